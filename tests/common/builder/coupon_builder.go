//go:build unit || e2e

package builder

import (
	"time"

	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/usecase/readmodel"

	"github.com/shopspring/decimal"
)

type CouponBuilder struct {
	Name          string
	DiscountType  coupon.DiscountType
	DiscountValue decimal.Decimal
	TotalQuantity int
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	Now           time.Time
}

func NewCouponBuilder() *CouponBuilder {
	return &CouponBuilder{
		Name:          "Welcome 1000",
		DiscountType:  coupon.DiscountFixed,
		DiscountValue: decimal.NewFromInt(1000),
		TotalQuantity: 100,
		Now:           time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

// BuildNew returns a coupon without an ID, ready to be saved.
func (b *CouponBuilder) BuildNew() *coupon.Coupon {
	discount, err := coupon.NewDiscount(b.DiscountType, b.DiscountValue)
	if err != nil {
		panic(err)
	}
	c, err := coupon.NewCoupon(b.Name, discount, b.TotalQuantity, b.ValidFrom, b.ValidUntil, b.Now)
	if err != nil {
		panic(err)
	}
	return c
}

func (b *CouponBuilder) BuildIssueReadModel(userID, couponID int64) *readmodel.CouponIssueRM {
	return &readmodel.CouponIssueRM{
		HistoryID:         1,
		UserID:            userID,
		CouponID:          couponID,
		RemainingQuantity: b.TotalQuantity - 1,
		IssuedAt:          b.Now,
	}
}

func (b *CouponBuilder) BuildHistoryReadModel(userID, couponID int64) readmodel.CouponHistoryRM {
	return readmodel.CouponHistoryRM{
		HistoryID:     1,
		UserID:        userID,
		CouponID:      couponID,
		CouponName:    b.Name,
		DiscountType:  string(b.DiscountType),
		DiscountValue: b.DiscountValue,
		Status:        string(coupon.HistoryIssued),
		IssuedAt:      b.Now,
		ValidUntil:    b.ValidUntil,
	}
}
