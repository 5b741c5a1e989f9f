package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid is an append-only audit record. Rows are never updated; reset is the
// only thing that deletes them.
type Bid struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	PlayerID  string          `gorm:"type:text;not null;index"`
	DeviceID  string          `gorm:"type:text;not null;index"`
	Franchise string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Bid) TableName() string {
	return "bids"
}
