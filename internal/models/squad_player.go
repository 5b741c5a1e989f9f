package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SquadPlayer records a player won by a franchise at a final price. The
// unique index on PlayerID guarantees a player is sold at most once.
type SquadPlayer struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	Franchise string          `gorm:"type:varchar(20);not null;index"`
	PlayerID  string          `gorm:"type:text;not null;uniqueIndex"`
	Player    Player          `gorm:"foreignKey:PlayerID"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"type:timestamptz;autoCreateTime"`
}

func (SquadPlayer) TableName() string {
	return "squad_players"
}
