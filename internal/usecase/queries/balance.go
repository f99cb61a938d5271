package queries

//go:generate mockgen -source=balance.go -destination=../../../tests/mock/queries/balance_mock.go -package=queriesmock

import (
	"context"

	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

type BalanceQueries interface {
	Get(ctx context.Context, userID int64) (*readmodel.BalanceRM, error)
}

type balanceQueriesImpl struct {
	uow   shared.UnitOfWork
	cache *shared.CacheAside
}

func NewBalanceQueries(uow shared.UnitOfWork, cache *shared.CacheAside) BalanceQueries {
	return &balanceQueriesImpl{uow: uow, cache: cache}
}

// Get reads without the balance lock; the cached value may trail a concurrent
// charge by at most one write.
func (q *balanceQueriesImpl) Get(ctx context.Context, userID int64) (*readmodel.BalanceRM, error) {
	if userID <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidID, "user id %d", userID)
	}

	rm, err := shared.GetOrCompute(ctx, q.cache, keygen.BalanceKey(userID), keygen.BalanceInfo.TTL(),
		func(ctx context.Context) (readmodel.BalanceRM, error) {
			var out readmodel.BalanceRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				b, err := tx.Balances().FindByUserID(ctx, userID)
				if err != nil {
					return err
				}
				out = readmodel.FromBalance(b)
				return nil
			})
			return out, err
		})
	if err != nil {
		return nil, err
	}
	return &rm, nil
}
