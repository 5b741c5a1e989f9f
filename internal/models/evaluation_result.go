package models

import "time"

// EvaluationResult is one scored row per franchise, replaced on every
// evaluation run (upsert keyed by franchise).
type EvaluationResult struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	Franchise  string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	BaseScore  float64   `gorm:"not null"`
	Bonus      float64   `gorm:"not null"`
	Efficiency float64   `gorm:"not null"`
	Penalties  float64   `gorm:"not null"`
	FinalScore float64   `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (EvaluationResult) TableName() string {
	return "evaluation_results"
}
