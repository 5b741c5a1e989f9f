package auction

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// stubRepo is an in-memory Repository. Transactions are a plain function
// call; CAS on the auction state row is honored so conflict paths are
// testable.
type stubRepo struct {
	players []models.Player
	teams   map[string]*models.Team
	devices map[string]*models.Device
	state   *models.AuctionState
	bids    []models.Bid
	squads  []models.SquadPlayer
	evals   []models.EvaluationResult

	// storedVersion is the version of the persisted state row, tracked
	// separately so a test can simulate a concurrent writer.
	storedVersion uint64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		teams:   map[string]*models.Team{},
		devices: map[string]*models.Device{},
	}
}

func (s *stubRepo) addPlayer(id, name string, base float64) {
	s.players = append(s.players, models.Player{
		ID:        id,
		Name:      name,
		Role:      "Batsman",
		BasePrice: decimal.NewFromFloat(base),
	})
	sort.Slice(s.players, func(i, j int) bool {
		if s.players[i].Name != s.players[j].Name {
			return s.players[i].Name < s.players[j].Name
		}
		return s.players[i].ID < s.players[j].ID
	})
}

func (s *stubRepo) addTeam(franchise string, purse float64) {
	s.teams[franchise] = &models.Team{
		Franchise: franchise,
		Purse:     decimal.NewFromFloat(purse),
	}
}

func (s *stubRepo) addDevice(id, role string, franchise *string) {
	s.devices[id] = &models.Device{
		ID:          id,
		Fingerprint: "fp-" + id,
		Role:        role,
		Franchise:   franchise,
		Active:      true,
		ConnectedAt: time.Now().UTC(),
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *stubRepo) UpsertPlayersTx(ctx context.Context, tx *gorm.DB, items []models.Player) error {
	for _, item := range items {
		s.players = append(s.players, item)
	}
	return nil
}

func (s *stubRepo) ListPlayers(ctx context.Context) ([]models.Player, error) {
	out := make([]models.Player, len(s.players))
	copy(out, s.players)
	return out, nil
}

func (s *stubRepo) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	for i := range s.players {
		if s.players[i].ID == id {
			p := s.players[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CountPlayers(ctx context.Context) (int64, error) {
	return int64(len(s.players)), nil
}

func (s *stubRepo) EnsureTeam(ctx context.Context, franchise string, purse decimal.Decimal) error {
	if _, ok := s.teams[franchise]; !ok {
		s.teams[franchise] = &models.Team{Franchise: franchise, Purse: purse}
	}
	return nil
}

func (s *stubRepo) ListTeams(ctx context.Context) ([]models.Team, error) {
	names := make([]string, 0, len(s.teams))
	for name := range s.teams {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]models.Team, 0, len(names))
	for _, name := range names {
		out = append(out, *s.teams[name])
	}
	return out, nil
}

func (s *stubRepo) GetTeamByFranchise(ctx context.Context, franchise string) (*models.Team, error) {
	team, ok := s.teams[franchise]
	if !ok {
		return nil, nil
	}
	copied := *team
	return &copied, nil
}

func (s *stubRepo) LinkTeamDevice(ctx context.Context, franchise string, deviceID string) error {
	if team, ok := s.teams[franchise]; ok {
		team.DeviceID = &deviceID
	}
	return nil
}

func (s *stubRepo) DebitTeamPurseTx(ctx context.Context, tx *gorm.DB, franchise string, amount decimal.Decimal) (bool, error) {
	team, ok := s.teams[franchise]
	if !ok || team.Purse.LessThan(amount) {
		return false, nil
	}
	team.Purse = team.Purse.Sub(amount).Round(2)
	return true, nil
}

func (s *stubRepo) ResetTeamPursesTx(ctx context.Context, tx *gorm.DB, franchises []string, purse decimal.Decimal) error {
	for _, franchise := range franchises {
		if team, ok := s.teams[franchise]; ok {
			team.Purse = purse
		}
	}
	return nil
}

func (s *stubRepo) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	device, ok := s.devices[id]
	if !ok {
		return nil, nil
	}
	copied := *device
	return &copied, nil
}

func (s *stubRepo) GetDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error) {
	for _, device := range s.devices {
		if device.Fingerprint == fingerprint {
			copied := *device
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CreateDevice(ctx context.Context, item *models.Device) error {
	copied := *item
	s.devices[item.ID] = &copied
	return nil
}

func (s *stubRepo) TouchDevice(ctx context.Context, id string, at time.Time) error {
	if device, ok := s.devices[id]; ok {
		device.ConnectedAt = at
		device.Active = true
	}
	return nil
}

func (s *stubRepo) CountActiveDevices(ctx context.Context) (int64, error) {
	var n int64
	for _, device := range s.devices {
		if device.Active {
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) ListAssignedFranchises(ctx context.Context) ([]string, error) {
	var out []string
	for _, device := range s.devices {
		if device.Franchise != nil {
			out = append(out, *device.Franchise)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *stubRepo) ListDevices(ctx context.Context) ([]models.Device, error) {
	ids := make([]string, 0, len(s.devices))
	for id := range s.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Device, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.devices[id])
	}
	return out, nil
}

func (s *stubRepo) DeactivateStaleDevices(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for _, device := range s.devices {
		if device.Active && device.ConnectedAt.Before(before) {
			device.Active = false
			n++
		}
	}
	return n, nil
}

func (s *stubRepo) GetAuctionState(ctx context.Context) (*models.AuctionState, error) {
	if s.state == nil {
		return nil, nil
	}
	copied := *s.state
	return &copied, nil
}

func (s *stubRepo) CreateAuctionState(ctx context.Context, item *models.AuctionState) error {
	copied := *item
	s.state = &copied
	s.storedVersion = item.Version
	return nil
}

func (s *stubRepo) SaveAuctionStateTx(ctx context.Context, tx *gorm.DB, state *models.AuctionState) (bool, error) {
	if s.state == nil {
		return false, nil
	}
	if state.Version != s.storedVersion {
		return false, nil
	}
	copied := *state
	copied.Version = state.Version + 1
	s.state = &copied
	s.storedVersion = copied.Version
	state.Version = copied.Version
	return true, nil
}

func (s *stubRepo) InsertBidTx(ctx context.Context, tx *gorm.DB, item *models.Bid) error {
	copied := *item
	copied.ID = uint64(len(s.bids) + 1)
	s.bids = append(s.bids, copied)
	return nil
}

func (s *stubRepo) ListBidsByPlayer(ctx context.Context, playerID string) ([]models.Bid, error) {
	var out []models.Bid
	for _, bid := range s.bids {
		if bid.PlayerID == playerID {
			out = append(out, bid)
		}
	}
	return out, nil
}

func (s *stubRepo) DeleteAllBidsTx(ctx context.Context, tx *gorm.DB) error {
	s.bids = nil
	return nil
}

func (s *stubRepo) InsertSquadPlayerTx(ctx context.Context, tx *gorm.DB, item *models.SquadPlayer) error {
	copied := *item
	copied.ID = uint64(len(s.squads) + 1)
	s.squads = append(s.squads, copied)
	return nil
}

func (s *stubRepo) ListSquadPlayers(ctx context.Context) ([]models.SquadPlayer, error) {
	out := make([]models.SquadPlayer, len(s.squads))
	copy(out, s.squads)
	return out, nil
}

func (s *stubRepo) ListSoldPlayerIDs(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(s.squads))
	for _, sp := range s.squads {
		out = append(out, sp.PlayerID)
	}
	return out, nil
}

func (s *stubRepo) GetSquadPlayerByPlayerID(ctx context.Context, playerID string) (*models.SquadPlayer, error) {
	for i := range s.squads {
		if s.squads[i].PlayerID == playerID {
			copied := s.squads[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) DeleteAllSquadPlayersTx(ctx context.Context, tx *gorm.DB) error {
	s.squads = nil
	return nil
}

func (s *stubRepo) UpsertEvaluationResults(ctx context.Context, items []models.EvaluationResult) error {
	for _, item := range items {
		replaced := false
		for i := range s.evals {
			if s.evals[i].Franchise == item.Franchise {
				s.evals[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			s.evals = append(s.evals, item)
		}
	}
	return nil
}

func (s *stubRepo) ListEvaluationResults(ctx context.Context) ([]models.EvaluationResult, error) {
	out := make([]models.EvaluationResult, len(s.evals))
	copy(out, s.evals)
	return out, nil
}

func (s *stubRepo) DeleteAllEvaluationResultsTx(ctx context.Context, tx *gorm.DB) error {
	s.evals = nil
	return nil
}

func (s *stubRepo) Snapshot(ctx context.Context) (repository.Snapshot, error) {
	state, _ := s.GetAuctionState(ctx)
	players, _ := s.ListPlayers(ctx)
	teams, _ := s.ListTeams(ctx)
	squads, _ := s.ListSquadPlayers(ctx)
	evals, _ := s.ListEvaluationResults(ctx)
	return repository.Snapshot{
		State:   state,
		Players: players,
		Teams:   teams,
		Squads:  squads,
		Evals:   evals,
	}, nil
}

var _ repository.Repository = (*stubRepo)(nil)
