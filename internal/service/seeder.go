package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playerauction/internal/repository"
)

// Seeder makes sure every configured franchise has a team row. Existing
// rows are left alone so a restart never resets purses mid-auction.
type Seeder struct {
	Repo       repository.Repository
	Logger     *zap.Logger
	Franchises []string
	TeamPurse  decimal.Decimal
}

func (s *Seeder) EnsureTeams(ctx context.Context) error {
	for _, franchise := range s.Franchises {
		if err := s.Repo.EnsureTeam(ctx, franchise, s.TeamPurse.Round(2)); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("teams ensured", zap.Int("franchises", len(s.Franchises)))
	}
	return nil
}
