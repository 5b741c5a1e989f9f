package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"playerauction/internal/models"
)

// Repository is the persistence surface for the auction core. The gorm
// implementation lives in repository/gorm; tests use in-memory stubs.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Players (catalog; write path is import only).
	UpsertPlayersTx(ctx context.Context, tx *gorm.DB, items []models.Player) error
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*models.Player, error)
	CountPlayers(ctx context.Context) (int64, error)

	// Teams (budget accounts).
	EnsureTeam(ctx context.Context, franchise string, purse decimal.Decimal) error
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeamByFranchise(ctx context.Context, franchise string) (*models.Team, error)
	LinkTeamDevice(ctx context.Context, franchise string, deviceID string) error
	DebitTeamPurseTx(ctx context.Context, tx *gorm.DB, franchise string, amount decimal.Decimal) (bool, error)
	ResetTeamPursesTx(ctx context.Context, tx *gorm.DB, franchises []string, purse decimal.Decimal) error

	// Devices (actors).
	GetDeviceByID(ctx context.Context, id string) (*models.Device, error)
	GetDeviceByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error)
	CreateDevice(ctx context.Context, item *models.Device) error
	TouchDevice(ctx context.Context, id string, at time.Time) error
	CountActiveDevices(ctx context.Context) (int64, error)
	ListAssignedFranchises(ctx context.Context) ([]string, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	DeactivateStaleDevices(ctx context.Context, before time.Time) (int64, error)

	// Auction state (single live row, CAS-versioned).
	GetAuctionState(ctx context.Context) (*models.AuctionState, error)
	CreateAuctionState(ctx context.Context, item *models.AuctionState) error
	SaveAuctionStateTx(ctx context.Context, tx *gorm.DB, state *models.AuctionState) (bool, error)

	// Bids (append-only log).
	InsertBidTx(ctx context.Context, tx *gorm.DB, item *models.Bid) error
	ListBidsByPlayer(ctx context.Context, playerID string) ([]models.Bid, error)
	DeleteAllBidsTx(ctx context.Context, tx *gorm.DB) error

	// Squads (allocations).
	InsertSquadPlayerTx(ctx context.Context, tx *gorm.DB, item *models.SquadPlayer) error
	ListSquadPlayers(ctx context.Context) ([]models.SquadPlayer, error)
	ListSoldPlayerIDs(ctx context.Context) ([]string, error)
	GetSquadPlayerByPlayerID(ctx context.Context, playerID string) (*models.SquadPlayer, error)
	DeleteAllSquadPlayersTx(ctx context.Context, tx *gorm.DB) error

	// Evaluation results (upsert keyed by franchise).
	UpsertEvaluationResults(ctx context.Context, items []models.EvaluationResult) error
	ListEvaluationResults(ctx context.Context) ([]models.EvaluationResult, error)
	DeleteAllEvaluationResultsTx(ctx context.Context, tx *gorm.DB) error

	// Snapshot is one consistent read across all auction tables.
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is everything a client needs to render the auction.
type Snapshot struct {
	State   *models.AuctionState
	Players []models.Player
	Teams   []models.Team
	Squads  []models.SquadPlayer
	Evals   []models.EvaluationResult
}
