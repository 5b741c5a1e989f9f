package auction

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"playerauction/internal/repository"
)

// Ledger owns all purse mutations. A debit is always issued inside the same
// transaction as the squad write it pays for; the purse never reflects one
// without the other.
type Ledger struct {
	Repo repository.Repository
}

// money normalizes every externally observable amount to two fractional
// digits before it touches storage.
func money(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Debit removes amount from the franchise purse, failing with a resource
// error when the purse does not cover it.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, franchise string, amount decimal.Decimal) error {
	amount = money(amount)
	if amount.IsNegative() {
		return validationf("debit amount must not be negative")
	}
	ok, err := l.Repo.DebitTeamPurseTx(ctx, tx, franchise, amount)
	if err != nil {
		return persistence("debit purse", err)
	}
	if !ok {
		return resourcef("winning team purse is insufficient for assignment")
	}
	return nil
}

// ResetAll restores every listed franchise purse to its initial amount.
func (l *Ledger) ResetAll(ctx context.Context, tx *gorm.DB, franchises []string, initial decimal.Decimal) error {
	if err := l.Repo.ResetTeamPursesTx(ctx, tx, franchises, money(initial)); err != nil {
		return persistence("reset purses", err)
	}
	return nil
}
