package queries

//go:generate mockgen -source=order.go -destination=../../../tests/mock/queries/order_mock.go -package=queriesmock

import (
	"context"

	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

type OrderQueries interface {
	Get(ctx context.Context, orderID int64) (*readmodel.OrderRM, error)
	ListByUser(ctx context.Context, userID int64, page Page) ([]readmodel.OrderRM, error)
}

type orderQueriesImpl struct {
	uow   shared.UnitOfWork
	cache *shared.CacheAside
}

func NewOrderQueries(uow shared.UnitOfWork, cache *shared.CacheAside) OrderQueries {
	return &orderQueriesImpl{uow: uow, cache: cache}
}

func (q *orderQueriesImpl) Get(ctx context.Context, orderID int64) (*readmodel.OrderRM, error) {
	if orderID <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidID, "order id %d", orderID)
	}

	rm, err := shared.GetOrCompute(ctx, q.cache, keygen.OrderKey(orderID), keygen.OrderDetail.TTL(),
		func(ctx context.Context) (readmodel.OrderRM, error) {
			var out readmodel.OrderRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				o, err := tx.Orders().FindByID(ctx, orderID)
				if err != nil {
					return err
				}
				out = readmodel.FromOrder(o)
				return nil
			})
			return out, err
		})
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (q *orderQueriesImpl) ListByUser(ctx context.Context, userID int64, page Page) ([]readmodel.OrderRM, error) {
	if userID <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidID, "user id %d", userID)
	}

	return shared.GetListOrCompute(ctx, q.cache, keygen.OrderListKey(userID, page.Limit, page.Offset), keygen.OrderList.TTL(),
		func(ctx context.Context) ([]readmodel.OrderRM, error) {
			var out []readmodel.OrderRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				orders, err := tx.Orders().FindByUserID(ctx, userID, page.Limit, page.Offset)
				if err != nil {
					return err
				}
				out = make([]readmodel.OrderRM, len(orders))
				for i, o := range orders {
					out[i] = readmodel.FromOrder(o)
				}
				return nil
			})
			return out, err
		})
}
