package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Player is an immutable catalog record. Rows are created by import and
// never mutated by the auction itself.
type Player struct {
	ID          string          `gorm:"primaryKey;type:text"`
	Name        string          `gorm:"type:text;uniqueIndex;not null"`
	Nationality *string         `gorm:"type:text"`
	Category    *string         `gorm:"type:text"`
	Role        string          `gorm:"type:text;not null"`
	BasePrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AIS         float64         `gorm:"not null"`
	Batting     *float64        `gorm:""`
	Bowling     *float64        `gorm:""`
	Fielding    *float64        `gorm:""`
	Leadership  *float64        `gorm:""`
	ImagePath   *string         `gorm:"type:text"`
	RawJSON     datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;autoCreateTime"`
}

func (Player) TableName() string {
	return "players"
}
