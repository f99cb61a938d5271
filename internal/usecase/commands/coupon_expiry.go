package commands

import (
	"context"
	"log/slog"

	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/shared"
)

// CouponExpirer retires coupons whose validity window has closed, together
// with the histories nobody used.
type CouponExpirer struct {
	uow    shared.UnitOfWork
	cache  *shared.CacheAside
	clock  clock.Clock
	logger *slog.Logger
}

type ExpiryResult struct {
	Coupons   int
	Histories int
}

func NewCouponExpirer(uow shared.UnitOfWork, cache *shared.CacheAside, clk clock.Clock, logger *slog.Logger) *CouponExpirer {
	return &CouponExpirer{uow: uow, cache: cache, clock: clk, logger: logger}
}

// Run is idempotent; a coupon already expired by a concurrent run is skipped.
func (e *CouponExpirer) Run(ctx context.Context) (ExpiryResult, error) {
	now := e.clock.Now()

	var res ExpiryResult
	err := e.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res = ExpiryResult{}
		candidates, err := tx.Coupons().FindExpirable(ctx, now)
		if err != nil {
			return err
		}
		for _, candidate := range candidates {
			c, err := tx.Coupons().FindByIDForUpdate(ctx, candidate.ID())
			if err != nil {
				return err
			}
			if !c.Expire(now) {
				continue
			}
			if err := tx.Coupons().Save(ctx, c); err != nil {
				return err
			}
			n, err := tx.CouponHistories().ExpireIssued(ctx, c.ID())
			if err != nil {
				return err
			}
			res.Coupons++
			res.Histories += n
		}
		return nil
	})
	if err != nil {
		return ExpiryResult{}, err
	}

	if res.Coupons > 0 {
		e.cache.Invalidate(ctx, nil, keygen.CouponList.Pattern())
		e.logger.Info("coupons expired",
			slog.Int("coupons", res.Coupons),
			slog.Int("histories", res.Histories),
		)
	}
	return res, nil
}
