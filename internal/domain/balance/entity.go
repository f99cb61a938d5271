package balance

import (
	"time"

	"commerce-server/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Balance holds the spendable amount of one user. The amount never goes
// below zero; every mutation goes through Charge or Deduct.
type Balance struct {
	userID    int64
	amount    decimal.Decimal
	updatedAt time.Time
}

func NewZero(userID int64, now time.Time) *Balance {
	return &Balance{userID: userID, amount: decimal.Zero, updatedAt: now}
}

func Reconstruct(userID int64, amount decimal.Decimal, updatedAt time.Time) *Balance {
	return &Balance{userID: userID, amount: amount, updatedAt: updatedAt}
}

func (b *Balance) Charge(amount decimal.Decimal, now time.Time) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	b.amount = b.amount.Add(amount)
	b.updatedAt = now
	return nil
}

func (b *Balance) Deduct(amount decimal.Decimal, now time.Time) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if b.amount.LessThan(amount) {
		return errs.Wrapf(errs.ErrInsufficientBalance, "balance %s, requested %s", b.amount, amount)
	}
	b.amount = b.amount.Sub(amount)
	b.updatedAt = now
	return nil
}

func (b *Balance) HasEnough(amount decimal.Decimal) bool {
	return b.amount.GreaterThanOrEqual(amount)
}

func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.Wrapf(errs.ErrInvalidAmount, "amount %s", amount)
	}
	return nil
}

func (b *Balance) UserID() int64           { return b.userID }
func (b *Balance) Amount() decimal.Decimal { return b.amount }
func (b *Balance) UpdatedAt() time.Time    { return b.updatedAt }
