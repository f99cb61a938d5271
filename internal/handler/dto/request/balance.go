package request

import "github.com/shopspring/decimal"

// Amount is validated by the use case; binding cannot tell a zero decimal from a missing one.
type ChargeBalanceRequest struct {
	UserID int64           `json:"userId" binding:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}

type DeductBalanceRequest struct {
	UserID int64           `json:"userId" binding:"required,gt=0"`
	Amount decimal.Decimal `json:"amount"`
}
