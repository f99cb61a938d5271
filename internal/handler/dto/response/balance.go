package response

import (
	"time"

	"commerce-server/internal/usecase/readmodel"
)

type BalanceResponse struct {
	UserID    int64     `json:"userId"`
	Amount    string    `json:"amount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromBalanceRM(rm *readmodel.BalanceRM) *BalanceResponse {
	res := mustCopy[BalanceResponse](rm)
	return &res
}
