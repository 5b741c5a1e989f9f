package db

import (
	"playerauction/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Player{},
		&models.Team{},
		&models.Device{},
		&models.AuctionState{},
		&models.Bid{},
		&models.SquadPlayer{},
		&models.EvaluationResult{},
	)
}
