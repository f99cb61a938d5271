package readmodel

import (
	"time"

	"commerce-server/internal/domain/balance"

	"github.com/shopspring/decimal"
)

type BalanceRM struct {
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func FromBalance(b *balance.Balance) BalanceRM {
	return BalanceRM{UserID: b.UserID(), Amount: b.Amount(), UpdatedAt: b.UpdatedAt()}
}
