package queries

//go:generate mockgen -source=coupon.go -destination=../../../tests/mock/queries/coupon_mock.go -package=queriesmock

import (
	"context"

	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

type CouponQueries interface {
	ListByUser(ctx context.Context, userID int64, page Page) ([]readmodel.CouponHistoryRM, error)
}

type couponQueriesImpl struct {
	uow   shared.UnitOfWork
	cache *shared.CacheAside
}

func NewCouponQueries(uow shared.UnitOfWork, cache *shared.CacheAside) CouponQueries {
	return &couponQueriesImpl{uow: uow, cache: cache}
}

func (q *couponQueriesImpl) ListByUser(ctx context.Context, userID int64, page Page) ([]readmodel.CouponHistoryRM, error) {
	if userID <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidID, "user id %d", userID)
	}

	return shared.GetListOrCompute(ctx, q.cache, keygen.CouponListKey(userID, page.Limit, page.Offset), keygen.CouponList.TTL(),
		func(ctx context.Context) ([]readmodel.CouponHistoryRM, error) {
			var out []readmodel.CouponHistoryRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				histories, err := tx.CouponHistories().FindByUserID(ctx, userID, page.Limit, page.Offset)
				if err != nil {
					return err
				}
				coupons := make(map[int64]*coupon.Coupon)
				out = make([]readmodel.CouponHistoryRM, 0, len(histories))
				for _, h := range histories {
					c, ok := coupons[h.CouponID()]
					if !ok {
						c, err = tx.Coupons().FindByID(ctx, h.CouponID())
						if err != nil {
							return err
						}
						coupons[h.CouponID()] = c
					}
					out = append(out, readmodel.FromCouponHistory(h, c))
				}
				return nil
			})
			return out, err
		})
}
