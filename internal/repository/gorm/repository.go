package gormrepository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"playerauction/internal/models"
	"playerauction/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- players ----------------------------------------------------------------

func (s *Store) UpsertPlayersTx(ctx context.Context, tx *gorm.DB, items []models.Player) error {
	if s == nil || tx == nil || len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nationality",
			"category",
			"role",
			"base_price",
			"ais",
			"batting",
			"bowling",
			"fielding",
			"leadership",
			"image_path",
			"raw_json",
		}),
	}).Create(&items).Error
}

func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Player
	if err := s.db.WithContext(ctx).
		Model(&models.Player{}).
		Order("name asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.Player
	err := s.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CountPlayers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Player{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- teams ------------------------------------------------------------------

func (s *Store) EnsureTeam(ctx context.Context, franchise string, purse decimal.Decimal) error {
	if s == nil || s.db == nil {
		return nil
	}
	franchise = strings.TrimSpace(franchise)
	if franchise == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "franchise"}},
		DoNothing: true,
	}).Create(&models.Team{Franchise: franchise, Purse: purse}).Error
}

func (s *Store) ListTeams(ctx context.Context) ([]models.Team, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Team
	if err := s.db.WithContext(ctx).
		Model(&models.Team{}).
		Order("franchise asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetTeamByFranchise(ctx context.Context, franchise string) (*models.Team, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	franchise = strings.TrimSpace(franchise)
	if franchise == "" {
		return nil, nil
	}
	var item models.Team
	err := s.db.WithContext(ctx).Model(&models.Team{}).Where("franchise = ?", franchise).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) LinkTeamDevice(ctx context.Context, franchise string, deviceID string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("franchise = ?", franchise).
		Update("device_id", deviceID).
		Error
}

// DebitTeamPurseTx debits conditionally: the update only matches while the
// purse still covers the amount, so a purse can never go negative even under
// concurrent finalize attempts. Returns false when funds were insufficient.
func (s *Store) DebitTeamPurseTx(ctx context.Context, tx *gorm.DB, franchise string, amount decimal.Decimal) (bool, error) {
	if s == nil || tx == nil {
		return false, nil
	}
	res := tx.WithContext(ctx).
		Model(&models.Team{}).
		Where("franchise = ? AND purse >= ?", franchise, amount).
		Updates(map[string]any{
			"purse":      gorm.Expr("round(purse - ?, 2)", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ResetTeamPursesTx(ctx context.Context, tx *gorm.DB, franchises []string, purse decimal.Decimal) error {
	if s == nil || tx == nil || len(franchises) == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&models.Team{}).
		Where("franchise IN ?", franchises).
		Updates(map[string]any{
			"purse":      purse,
			"updated_at": time.Now().UTC(),
		}).Error
}

// --- devices ----------------------------------------------------------------

func (s *Store) GetDeviceByID(ctx context.Context, id string) (*models.Device, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.Device
	err := s.db.WithContext(ctx).Model(&models.Device{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, nil
	}
	var item models.Device
	err := s.db.WithContext(ctx).Model(&models.Device{}).Where("fingerprint = ?", fingerprint).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateDevice(ctx context.Context, item *models.Device) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) TouchDevice(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{"connected_at": at, "active": true}).
		Error
}

func (s *Store) CountActiveDevices(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("active = ?", true).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListAssignedFranchises(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var franchises []string
	if err := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("role = ?", models.DeviceRoleAuction).
		Where("active = ?", true).
		Where("franchise IS NOT NULL").
		Pluck("franchise", &franchises).Error; err != nil {
		return nil, err
	}
	return franchises, nil
}

func (s *Store) ListDevices(ctx context.Context) ([]models.Device, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Device
	if err := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Order("connected_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeactivateStaleDevices(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("active = ?", true).
		Where("connected_at < ?", before).
		Update("active", false)
	return res.RowsAffected, res.Error
}

// --- auction state ----------------------------------------------------------

func (s *Store) GetAuctionState(ctx context.Context) (*models.AuctionState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.AuctionState
	err := s.db.WithContext(ctx).
		Model(&models.AuctionState{}).
		Order("updated_at desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateAuctionState(ctx context.Context, item *models.AuctionState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// SaveAuctionStateTx writes the full row conditioned on the version the
// caller read. A zero-row update means a concurrent writer won; the caller
// sees ok=false and reports a conflict.
func (s *Store) SaveAuctionStateTx(ctx context.Context, tx *gorm.DB, state *models.AuctionState) (bool, error) {
	if s == nil || tx == nil || state == nil {
		return false, nil
	}
	expected := state.Version
	res := tx.WithContext(ctx).
		Model(&models.AuctionState{}).
		Where("id = ? AND version = ?", state.ID, expected).
		Updates(map[string]any{
			"status":                   state.Status,
			"current_player_id":        state.CurrentPlayerID,
			"current_bid":              state.CurrentBid,
			"current_leader_device_id": state.CurrentLeaderDeviceID,
			"timer_end":                state.TimerEnd,
			"version":                  expected + 1,
			"updated_at":               time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	state.Version = expected + 1
	return true, nil
}

// --- bids -------------------------------------------------------------------

func (s *Store) InsertBidTx(ctx context.Context, tx *gorm.DB, item *models.Bid) error {
	if s == nil || tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Create(item).Error
}

func (s *Store) ListBidsByPlayer(ctx context.Context, playerID string) ([]models.Bid, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Bid
	if err := s.db.WithContext(ctx).
		Model(&models.Bid{}).
		Where("player_id = ?", playerID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAllBidsTx(ctx context.Context, tx *gorm.DB) error {
	if s == nil || tx == nil {
		return nil
	}
	return tx.WithContext(ctx).Where("1 = 1").Delete(&models.Bid{}).Error
}

// --- squads -----------------------------------------------------------------

func (s *Store) InsertSquadPlayerTx(ctx context.Context, tx *gorm.DB, item *models.SquadPlayer) error {
	if s == nil || tx == nil || item == nil {
		return nil
	}
	return tx.WithContext(ctx).Omit("Player").Create(item).Error
}

func (s *Store) ListSquadPlayers(ctx context.Context) ([]models.SquadPlayer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SquadPlayer
	if err := s.db.WithContext(ctx).
		Model(&models.SquadPlayer{}).
		Preload("Player").
		Order("franchise asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSoldPlayerIDs(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var ids []string
	if err := s.db.WithContext(ctx).
		Model(&models.SquadPlayer{}).
		Pluck("player_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) GetSquadPlayerByPlayerID(ctx context.Context, playerID string) (*models.SquadPlayer, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, nil
	}
	var item models.SquadPlayer
	err := s.db.WithContext(ctx).Model(&models.SquadPlayer{}).Where("player_id = ?", playerID).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) DeleteAllSquadPlayersTx(ctx context.Context, tx *gorm.DB) error {
	if s == nil || tx == nil {
		return nil
	}
	return tx.WithContext(ctx).Where("1 = 1").Delete(&models.SquadPlayer{}).Error
}

// --- evaluation results -----------------------------------------------------

func (s *Store) UpsertEvaluationResults(ctx context.Context, items []models.EvaluationResult) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "franchise"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"base_score",
			"bonus",
			"efficiency",
			"penalties",
			"final_score",
			"updated_at",
		}),
	}).Create(&items).Error
}

func (s *Store) ListEvaluationResults(ctx context.Context) ([]models.EvaluationResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.EvaluationResult
	if err := s.db.WithContext(ctx).
		Model(&models.EvaluationResult{}).
		Order("final_score desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAllEvaluationResultsTx(ctx context.Context, tx *gorm.DB) error {
	if s == nil || tx == nil {
		return nil
	}
	return tx.WithContext(ctx).Where("1 = 1").Delete(&models.EvaluationResult{}).Error
}

// --- snapshot ---------------------------------------------------------------

// Snapshot reads every auction table inside one transaction so a client can
// never see an allocation without its purse debit.
func (s *Store) Snapshot(ctx context.Context) (repository.Snapshot, error) {
	var snap repository.Snapshot
	if s == nil || s.db == nil {
		return snap, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var state models.AuctionState
		err := tx.Model(&models.AuctionState{}).Order("updated_at desc").First(&state).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == nil {
			snap.State = &state
		}
		if err := tx.Model(&models.Player{}).Order("name asc, id asc").Find(&snap.Players).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Team{}).Order("franchise asc").Find(&snap.Teams).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SquadPlayer{}).Preload("Player").Order("franchise asc, id asc").Find(&snap.Squads).Error; err != nil {
			return err
		}
		return tx.Model(&models.EvaluationResult{}).Order("final_score desc").Find(&snap.Evals).Error
	})
	if err != nil {
		return repository.Snapshot{}, err
	}
	return snap, nil
}
