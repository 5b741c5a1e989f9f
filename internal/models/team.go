package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Team is a franchise budget account. Purse is mutated only by the ledger
// (debit on assignment, reset to the configured purse).
type Team struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	Franchise string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Purse     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeviceID  *string         `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Team) TableName() string {
	return "teams"
}
