package readmodel

import (
	"time"

	"commerce-server/internal/domain/coupon"

	"github.com/shopspring/decimal"
)

type CouponHistoryRM struct {
	HistoryID     int64           `json:"history_id"`
	UserID        int64           `json:"user_id"`
	CouponID      int64           `json:"coupon_id"`
	CouponName    string          `json:"coupon_name"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Status        string          `json:"status"`
	IssuedAt      time.Time       `json:"issued_at"`
	UsedAt        *time.Time      `json:"used_at,omitempty"`
	ValidUntil    *time.Time      `json:"valid_until,omitempty"`
}

type CouponIssueRM struct {
	HistoryID         int64     `json:"history_id"`
	UserID            int64     `json:"user_id"`
	CouponID          int64     `json:"coupon_id"`
	RemainingQuantity int       `json:"remaining_quantity"`
	IssuedAt          time.Time `json:"issued_at"`
}

func FromCouponHistory(h *coupon.History, c *coupon.Coupon) CouponHistoryRM {
	return CouponHistoryRM{
		HistoryID:     h.ID(),
		UserID:        h.UserID(),
		CouponID:      h.CouponID(),
		CouponName:    c.Name(),
		DiscountType:  string(c.Discount().Type()),
		DiscountValue: c.Discount().Value(),
		Status:        string(h.Status()),
		IssuedAt:      h.IssuedAt(),
		UsedAt:        h.UsedAt(),
		ValidUntil:    c.ValidUntil(),
	}
}
