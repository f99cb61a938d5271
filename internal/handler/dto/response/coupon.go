package response

import (
	"time"

	"commerce-server/internal/usecase/readmodel"
)

type CouponIssueResponse struct {
	HistoryID         int64     `json:"historyId"`
	UserID            int64     `json:"userId"`
	CouponID          int64     `json:"couponId"`
	RemainingQuantity int       `json:"remainingQuantity"`
	IssuedAt          time.Time `json:"issuedAt"`
}

type CouponHistoryResponse struct {
	HistoryID     int64      `json:"historyId"`
	CouponID      int64      `json:"couponId"`
	CouponName    string     `json:"couponName"`
	DiscountType  string     `json:"discountType"`
	DiscountValue string     `json:"discountValue"`
	Status        string     `json:"status"`
	IssuedAt      time.Time  `json:"issuedAt"`
	UsedAt        *time.Time `json:"usedAt,omitempty"`
	ValidUntil    *time.Time `json:"validUntil,omitempty"`
}

func FromCouponIssueRM(rm *readmodel.CouponIssueRM) *CouponIssueResponse {
	res := mustCopy[CouponIssueResponse](rm)
	return &res
}

func FromCouponHistoryRMs(rms []readmodel.CouponHistoryRM) []CouponHistoryResponse {
	return mustCopySlice[CouponHistoryResponse](rms)
}
