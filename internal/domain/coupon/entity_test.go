//go:build unit

package coupon_test

import (
	"testing"
	"time"

	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newCoupon(t *testing.T, total int, mutate ...func(*couponArgs)) *coupon.Coupon {
	t.Helper()
	args := couponArgs{total: total, remaining: total, status: coupon.StatusActive}
	for _, m := range mutate {
		m(&args)
	}
	discount, err := coupon.NewFixedDiscount(decimal.NewFromInt(1000))
	require.NoError(t, err)
	c, err := coupon.Reconstruct(1, "welcome", discount, args.total, args.remaining, args.status, args.from, args.until, now, now)
	require.NoError(t, err)
	return c
}

type couponArgs struct {
	total, remaining int
	status           coupon.Status
	from, until      *time.Time
}

func TestCouponIssue(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		total  int
		mutate func(*couponArgs)
		errIs  error
	}{
		{name: "issuable", total: 10},
		{name: "last unit", total: 1},
		{name: "sold out", total: 1, mutate: func(a *couponArgs) { a.remaining = 0 }, errIs: errs.ErrSoldOut},
		{name: "inactive", total: 5, mutate: func(a *couponArgs) { a.status = coupon.StatusInactive }, errIs: errs.ErrCouponInactive},
		{name: "expired", total: 5, mutate: func(a *couponArgs) { a.until = &past }, errIs: errs.ErrCouponExpired},
		{name: "not yet valid", total: 5, mutate: func(a *couponArgs) { a.from = &future }, errIs: errs.ErrCouponNotYetValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutators []func(*couponArgs)
			if tt.mutate != nil {
				mutators = append(mutators, tt.mutate)
			}
			c := newCoupon(t, tt.total, mutators...)
			before := c.RemainingQuantity()

			h, err := c.Issue(7, now)
			if tt.errIs != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tt.errIs), err.Error())
				assert.True(t, errs.HasCategory(err, errs.ErrBusinessRule))
				assert.Nil(t, h)
				assert.Equal(t, before, c.RemainingQuantity())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, before-1, c.RemainingQuantity())
			assert.Equal(t, int64(7), h.UserID())
			assert.Equal(t, c.ID(), h.CouponID())
			assert.Equal(t, coupon.HistoryIssued, h.Status())
		})
	}
}

func TestCouponRemainingNeverNegative(t *testing.T) {
	c := newCoupon(t, 3)
	issued := 0
	for i := range 10 {
		if _, err := c.Issue(int64(i), now); err == nil {
			issued++
		}
		assert.GreaterOrEqual(t, c.RemainingQuantity(), 0)
	}
	assert.Equal(t, 3, issued)
	assert.Equal(t, 3, c.IssuedQuantity())
}

func TestReconstructRejectsInvalidQuantities(t *testing.T) {
	discount, _ := coupon.NewFixedDiscount(decimal.NewFromInt(1))
	_, err := coupon.Reconstruct(1, "x", discount, 5, 6, coupon.StatusActive, nil, nil, now, now)
	assert.ErrorIs(t, err, coupon.ErrInvalidQuantity)
	_, err = coupon.Reconstruct(1, "x", discount, 5, -1, coupon.StatusActive, nil, nil, now, now)
	assert.ErrorIs(t, err, coupon.ErrInvalidQuantity)
}

func TestHistoryUse(t *testing.T) {
	h := coupon.NewHistory(1, 2, now)
	require.NoError(t, h.Use(now))
	assert.Equal(t, coupon.HistoryUsed, h.Status())
	require.NotNil(t, h.UsedAt())

	err := h.Use(now)
	assert.True(t, errs.Is(err, errs.ErrCouponNotUsable))
}

func TestDiscount(t *testing.T) {
	price := decimal.NewFromInt(10000)

	fixed, err := coupon.NewFixedDiscount(decimal.NewFromInt(3000))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7000).Equal(fixed.Apply(price)))

	big, err := coupon.NewFixedDiscount(decimal.NewFromInt(30000))
	require.NoError(t, err)
	assert.True(t, big.Apply(price).IsZero())

	percent, err := coupon.NewPercentageDiscount(decimal.NewFromInt(15))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1500).Equal(percent.AmountFor(price)))

	_, err = coupon.NewPercentageDiscount(decimal.NewFromInt(101))
	assert.ErrorIs(t, err, coupon.ErrInvalidDiscountPercent)
	_, err = coupon.NewDiscount("BOGUS", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, coupon.ErrInvalidDiscountKind)
}

func TestCouponExpire(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(*couponArgs)
		expired bool
	}{
		{name: "validity ended", mutate: func(a *couponArgs) { a.until = &past }, expired: true},
		{name: "still valid", mutate: func(a *couponArgs) { a.until = &future }},
		{name: "open ended", mutate: func(*couponArgs) {}},
		{name: "inactive", mutate: func(a *couponArgs) { a.until = &past; a.status = coupon.StatusInactive }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoupon(t, 5, tt.mutate)
			status := c.Status()

			assert.Equal(t, tt.expired, c.Expire(now))
			if tt.expired {
				assert.Equal(t, coupon.StatusExpired, c.Status())
				assert.True(t, errs.Is(c.CheckIssuable(now), errs.ErrCouponInactive))
				assert.False(t, c.Expire(now))
				return
			}
			assert.Equal(t, status, c.Status())
		})
	}
}

func TestHistoryExpire(t *testing.T) {
	h := coupon.NewHistory(7, 1, now)
	require.NoError(t, h.Expire())
	assert.Equal(t, coupon.HistoryExpired, h.Status())
	assert.True(t, errs.Is(h.Use(now), errs.ErrCouponNotUsable))

	used := coupon.NewHistory(8, 1, now)
	require.NoError(t, used.Use(now))
	assert.True(t, errs.Is(used.Expire(), errs.ErrCouponNotUsable))
	assert.Equal(t, coupon.HistoryUsed, used.Status())
}
