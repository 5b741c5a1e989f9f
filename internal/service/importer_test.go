package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

type playerStore struct {
	repository.Repository

	upserted []models.Player
}

func (s *playerStore) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *playerStore) UpsertPlayersTx(ctx context.Context, tx *gorm.DB, items []models.Player) error {
	s.upserted = items
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportCSVByHeaders(t *testing.T) {
	path := writeCSV(t, "Player Name,Nationality,AIS,Position,OVR\n"+
		"Bumrah,India,88.5,Bowler,90\n"+
		"Kohli,India,92,Batsman,95\n"+
		",India,50,Batsman,60\n")

	store := &playerStore{}
	imp := &Importer{Repo: store}
	result, err := imp.ImportCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 {
		t.Fatalf("expected 2 imported 1 skipped, got %+v", result)
	}

	byName := map[string]models.Player{}
	for _, p := range store.upserted {
		byName[p.Name] = p
	}
	bumrah, ok := byName["Bumrah"]
	if !ok {
		t.Fatalf("Bumrah missing from upsert")
	}
	if bumrah.Role != "Bowler" {
		t.Fatalf("expected role Bowler, got %s", bumrah.Role)
	}
	if bumrah.AIS != 88.5 {
		t.Fatalf("expected AIS 88.5, got %v", bumrah.AIS)
	}
	// OVR 90 estimates a 4.5 base price.
	if !bumrah.BasePrice.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("expected base price 4.5, got %s", bumrah.BasePrice)
	}
	if bumrah.ID == "" {
		t.Fatalf("imported player must get an id")
	}
	if bumrah.Nationality == nil || *bumrah.Nationality != "India" {
		t.Fatalf("expected nationality India, got %v", bumrah.Nationality)
	}
}

func TestImportCSVDeduplicatesByName(t *testing.T) {
	path := writeCSV(t, "Player Name,AIS,Position\n"+
		"Bumrah,80,Bowler\n"+
		"Bumrah,85,Bowler\n")

	store := &playerStore{}
	imp := &Importer{Repo: store}
	result, err := imp.ImportCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected duplicate collapsed, got %d", result.Imported)
	}
	// Later row wins.
	if store.upserted[0].AIS != 85 {
		t.Fatalf("expected AIS 85, got %v", store.upserted[0].AIS)
	}
}

func TestImportCSVDefaultsRole(t *testing.T) {
	path := writeCSV(t, "Player Name,AIS\nBumrah,80\n")

	store := &playerStore{}
	imp := &Importer{Repo: store}
	if _, err := imp.ImportCSV(context.Background(), path); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if store.upserted[0].Role != "Batsman" {
		t.Fatalf("expected default role Batsman, got %s", store.upserted[0].Role)
	}
}

func TestImportCSVRejectsEmptyFile(t *testing.T) {
	path := writeCSV(t, "Player Name,AIS\n")
	imp := &Importer{Repo: &playerStore{}}
	if _, err := imp.ImportCSV(context.Background(), path); err == nil {
		t.Fatalf("expected error for header-only file")
	}
}

func TestEstimateBasePrice(t *testing.T) {
	ovr := 90.0
	if got := estimateBasePrice(50, &ovr); !got.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("ovr takes precedence: got %s", got)
	}
	if got := estimateBasePrice(50, nil); !got.Equal(decimal.NewFromFloat(2.5)) {
		t.Fatalf("ais fallback: got %s", got)
	}
	if got := estimateBasePrice(1, nil); !got.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("floor at 0.2: got %s", got)
	}
}
