package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusWaiting   = "waiting"
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
)

// AuctionState is the single authoritative "now" of the live auction.
// The design tolerates exactly one row; every mutation bumps Version and
// writes conditioned on the version read (optimistic CAS).
type AuctionState struct {
	ID                    uint64          `gorm:"primaryKey;autoIncrement"`
	Status                string          `gorm:"type:varchar(20);not null;default:'waiting'"`
	CurrentPlayerID       *string         `gorm:"type:text"`
	CurrentBid            decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CurrentLeaderDeviceID *string         `gorm:"type:text"`
	TimerEnd              *time.Time      `gorm:"type:timestamptz"`
	Version               uint64          `gorm:"not null;default:0"`
	UpdatedAt             time.Time       `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AuctionState) TableName() string {
	return "auction_state"
}
