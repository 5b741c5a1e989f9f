package evaluation

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playerauction/internal/config"
	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// Engine scores each franchise's final squad. It only reads squads and
// teams and only writes evaluation results, so it can run at any time
// without coordinating with the auction; re-running with unchanged inputs
// yields identical rows.
type Engine struct {
	Repo       repository.Repository
	Logger     *zap.Logger
	Config     config.EvaluationConfig
	Franchises []string
	TeamPurse  decimal.Decimal
}

type squadEntry struct {
	PlayerID string
	Role     string
	AIS      float64
}

// Breakdown is the per-franchise score decomposition.
type Breakdown struct {
	BaseScore  float64
	Bonus      float64
	Efficiency float64
	Penalties  float64
	FinalScore float64
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute scores every franchise, replaces the stored results and returns
// them sorted by final score descending.
func (e *Engine) Compute(ctx context.Context) ([]models.EvaluationResult, error) {
	squads, err := e.Repo.ListSquadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := e.Repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	purseByFranchise := make(map[string]decimal.Decimal, len(teams))
	for _, team := range teams {
		purseByFranchise[team.Franchise] = team.Purse
	}
	entriesByFranchise := make(map[string][]squadEntry, len(e.Franchises))
	for _, row := range squads {
		entriesByFranchise[row.Franchise] = append(entriesByFranchise[row.Franchise], squadEntry{
			PlayerID: row.PlayerID,
			Role:     NormalizeRole(row.Player.Role),
			AIS:      row.Player.AIS,
		})
	}

	results := make([]models.EvaluationResult, 0, len(e.Franchises))
	for _, franchise := range e.Franchises {
		purse, ok := purseByFranchise[franchise]
		if !ok {
			purse = e.TeamPurse
		}
		spentDec := e.TeamPurse.Sub(purse).Round(2)
		spent, _ := spentDec.Float64()

		b := e.score(entriesByFranchise[franchise], spent)
		results = append(results, models.EvaluationResult{
			Franchise:  franchise,
			BaseScore:  b.BaseScore,
			Bonus:      b.Bonus,
			Efficiency: b.Efficiency,
			Penalties:  b.Penalties,
			FinalScore: b.FinalScore,
		})
	}

	if err := e.Repo.UpsertEvaluationResults(ctx, results); err != nil {
		return nil, err
	}
	if e.Logger != nil {
		e.Logger.Info("evaluation computed", zap.Int("franchises", len(results)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results, nil
}

// score applies the full formula to one franchise's roster and spend.
func (e *Engine) score(entries []squadEntry, spent float64) Breakdown {
	sorted := make([]squadEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AIS > sorted[j].AIS
	})

	byRole := map[string][]squadEntry{}
	for _, entry := range sorted {
		byRole[entry.Role] = append(byRole[entry.Role], entry)
	}

	var penalties float64
	selected := make([]squadEntry, 0, e.Config.SquadSize)
	selectedIDs := map[string]struct{}{}

	// Mandatory XI quota, filled greedily from the best of each category.
	quota := []struct {
		role  string
		count int
	}{
		{RoleKeeper, 1},
		{RoleBatter, 3},
		{RoleBowler, 3},
		{RoleAllRounder, 1},
	}
	for _, q := range quota {
		picked := 0
		for _, entry := range byRole[q.role] {
			if picked == q.count {
				break
			}
			if _, taken := selectedIDs[entry.PlayerID]; taken {
				continue
			}
			selected = append(selected, entry)
			selectedIDs[entry.PlayerID] = struct{}{}
			picked++
		}
		if missing := q.count - picked; missing > 0 {
			penalties += float64(missing) * e.Config.MissingSlotPenalty
		}
	}

	// Top-up to a full XI from any category.
	for _, entry := range sorted {
		if len(selected) == e.Config.SquadSize {
			break
		}
		if _, taken := selectedIDs[entry.PlayerID]; taken {
			continue
		}
		selected = append(selected, entry)
		selectedIDs[entry.PlayerID] = struct{}{}
	}
	if short := e.Config.SquadSize - len(selected); short > 0 {
		penalties += float64(short) * e.Config.MissingXIPenalty
	}

	var baseScore float64
	for _, entry := range selected {
		baseScore += entry.AIS
	}
	baseScore = round2(baseScore)

	// Balance bonus rewards depth in the whole pool, not just the XI.
	var balanceBonus float64
	if len(byRole[RoleKeeper]) >= 2 {
		balanceBonus += 3
	}
	if len(byRole[RoleBatter]) >= 5 {
		balanceBonus += 3
	}
	if len(byRole[RoleBowler]) >= 5 {
		balanceBonus += 3
	}
	if len(byRole[RoleAllRounder]) >= 3 {
		balanceBonus += 3
	}

	purse, _ := e.TeamPurse.Float64()
	var budgetBonus float64
	switch {
	case spent >= 85 && spent <= purse:
		budgetBonus = 10
	case spent >= 75:
		budgetBonus = 6
	case spent > 0:
		budgetBonus = 3
	}
	if spent > purse {
		penalties += round2((spent - purse) * e.Config.OverspendPenalty)
	}

	if len(entries) < e.Config.MinRosterSize {
		penalties += float64(e.Config.MinRosterSize-len(entries)) * e.Config.RosterShortPenalty
	}

	bonus := round2(balanceBonus + budgetBonus)
	var efficiency float64
	if spent > 0 {
		efficiency = round2(baseScore / spent * 10)
	}
	penalties = round2(penalties)

	return Breakdown{
		BaseScore:  baseScore,
		Bonus:      bonus,
		Efficiency: efficiency,
		Penalties:  penalties,
		FinalScore: round2(baseScore + bonus + efficiency - penalties),
	}
}
