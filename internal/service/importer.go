package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

// Importer ingests a player catalog CSV. Rows are keyed by name; re-running
// an import updates attributes in place and never disturbs sold players.
type Importer struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

type ImportResult struct {
	Imported int
	Skipped  int
}

func cleanText(v string) string {
	return strings.TrimSpace(v)
}

func toFloatPtr(v string) *float64 {
	raw := cleanText(v)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func toFloat(v string) float64 {
	if p := toFloatPtr(v); p != nil {
		return *p
	}
	return 0
}

func normalizeKey(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// estimateBasePrice derives a starting price from the overall (or quality)
// score: score/20, floored at 0.2, rounded to one fractional digit.
func estimateBasePrice(ais float64, ovr *float64) decimal.Decimal {
	score := ais
	if ovr != nil {
		score = *ovr
	}
	estimated := math.Round(score/20*10) / 10
	if estimated < 0.2 {
		estimated = 0.2
	}
	return decimal.NewFromFloat(estimated).Round(2)
}

type headerIndex map[string]int

func (h headerIndex) column(cols []string, candidates []string, fallbacks []int) string {
	for _, candidate := range candidates {
		if idx, ok := h[normalizeKey(candidate)]; ok && idx < len(cols) {
			return cols[idx]
		}
	}
	for _, idx := range fallbacks {
		if idx >= 0 && idx < len(cols) {
			return cols[idx]
		}
	}
	return ""
}

// ImportCSV reads the catalog file and upserts every named row.
func (i *Importer) ImportCSV(ctx context.Context, path string) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return ImportResult{}, fmt.Errorf("csv has no data rows")
	}

	headers := headerIndex{}
	for idx, header := range records[0] {
		headers[normalizeKey(header)] = idx
	}

	byName := map[string]models.Player{}
	skipped := 0
	for _, cols := range records[1:] {
		name := cleanText(headers.column(cols, []string{"playername", "name"}, []int{1}))
		if name == "" {
			skipped++
			continue
		}

		ais := toFloat(headers.column(cols, []string{"ais"}, []int{11, 7}))
		ovr := toFloatPtr(headers.column(cols, []string{"ovr"}, []int{14, 9}))
		role := cleanText(headers.column(cols, []string{"position", "role"}, []int{12, 8}))
		if role == "" {
			role = "Batsman"
		}

		raw, _ := json.Marshal(cols)
		player := models.Player{
			ID:         uuid.NewString(),
			Name:       name,
			Role:       role,
			BasePrice:  estimateBasePrice(ais, ovr),
			AIS:        ais,
			Batting:    toFloatPtr(headers.column(cols, []string{"batting40", "batting"}, []int{3})),
			Bowling:    toFloatPtr(headers.column(cols, []string{"bowling40", "bowling"}, []int{5})),
			Fielding:   toFloatPtr(headers.column(cols, []string{"fielding10", "fielding"}, []int{7})),
			Leadership: toFloatPtr(headers.column(cols, []string{"leadership10", "leadership"}, []int{9})),
			RawJSON:    datatypes.JSON(raw),
		}
		if nationality := cleanText(headers.column(cols, []string{"nationality"}, []int{2})); nationality != "" {
			player.Nationality = &nationality
		}
		if category := cleanText(headers.column(cols, []string{"category"}, []int{10})); category != "" {
			player.Category = &category
		}
		byName[name] = player
	}

	players := make([]models.Player, 0, len(byName))
	for _, p := range byName {
		players = append(players, p)
	}

	if err := i.Repo.InTx(ctx, func(tx *gorm.DB) error {
		return i.Repo.UpsertPlayersTx(ctx, tx, players)
	}); err != nil {
		return ImportResult{}, err
	}

	if i.Logger != nil {
		i.Logger.Info("player import complete",
			zap.String("path", path),
			zap.Int("imported", len(players)),
			zap.Int("skipped", skipped),
		)
	}
	return ImportResult{Imported: len(players), Skipped: skipped}, nil
}
