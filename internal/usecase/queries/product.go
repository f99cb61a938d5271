package queries

//go:generate mockgen -source=product.go -destination=../../../tests/mock/queries/product_mock.go -package=queriesmock

import (
	"context"
	"time"

	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

const (
	DefaultPopularDays  = 3
	DefaultPopularLimit = 5
	MaxPopularDays      = 90
)

type ProductQueries interface {
	Get(ctx context.Context, productID int64) (*readmodel.ProductRM, error)
	List(ctx context.Context, page Page) ([]readmodel.ProductRM, error)
	Popular(ctx context.Context, days, limit int) ([]readmodel.PopularProductRM, error)
	Ranking(ctx context.Context, period keygen.Period, at time.Time, limit int) (*readmodel.RankingRM, error)
}

type productQueriesImpl struct {
	uow   shared.UnitOfWork
	cache *shared.CacheAside
	clock clock.Clock
}

func NewProductQueries(uow shared.UnitOfWork, cache *shared.CacheAside, clk clock.Clock) ProductQueries {
	return &productQueriesImpl{uow: uow, cache: cache, clock: clk}
}

func (q *productQueriesImpl) Get(ctx context.Context, productID int64) (*readmodel.ProductRM, error) {
	if productID <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidID, "product id %d", productID)
	}

	rm, err := shared.GetOrCompute(ctx, q.cache, keygen.ProductKey(productID), keygen.ProductDetail.TTL(),
		func(ctx context.Context) (readmodel.ProductRM, error) {
			var out readmodel.ProductRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				p, err := tx.Products().FindByID(ctx, productID)
				if err != nil {
					return err
				}
				out = readmodel.FromProduct(p)
				return nil
			})
			return out, err
		})
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (q *productQueriesImpl) List(ctx context.Context, page Page) ([]readmodel.ProductRM, error) {
	return shared.GetListOrCompute(ctx, q.cache, keygen.ProductListKey(page.Limit, page.Offset), keygen.ProductList.TTL(),
		func(ctx context.Context) ([]readmodel.ProductRM, error) {
			var out []readmodel.ProductRM
			err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
				products, err := tx.Products().FindPage(ctx, page.Limit, page.Offset)
				if err != nil {
					return err
				}
				out = make([]readmodel.ProductRM, len(products))
				for i, p := range products {
					out[i] = readmodel.FromProduct(p)
				}
				return nil
			})
			return out, err
		})
}

// Popular ranks products by units sold over the last days days.
func (q *productQueriesImpl) Popular(ctx context.Context, days, limit int) ([]readmodel.PopularProductRM, error) {
	if days <= 0 {
		days = DefaultPopularDays
	}
	if days > MaxPopularDays {
		days = MaxPopularDays
	}
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultPopularLimit
	}

	now := q.clock.Now()
	return shared.GetListOrCompute(ctx, q.cache, keygen.PopularKey(days, limit), keygen.PopularTTL(days),
		func(ctx context.Context) ([]readmodel.PopularProductRM, error) {
			return q.topSelling(ctx, now.AddDate(0, 0, -days), now, limit)
		})
}

// Ranking ranks products sold inside the calendar bucket containing at.
func (q *productQueriesImpl) Ranking(ctx context.Context, period keygen.Period, at time.Time, limit int) (*readmodel.RankingRM, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if at.IsZero() {
		at = q.clock.Now()
	}

	rm, err := shared.GetOrCompute(ctx, q.cache, keygen.RankingKey(period, at), keygen.RankingTTL(period),
		func(ctx context.Context) (readmodel.RankingRM, error) {
			start, end := bucketBounds(period, at)
			products, err := q.topSelling(ctx, start, end, limit)
			if err != nil {
				return readmodel.RankingRM{}, err
			}
			return readmodel.RankingRM{Period: string(period), Bucket: period.Bucket(at), Products: products}, nil
		})
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (q *productQueriesImpl) topSelling(ctx context.Context, since, until time.Time, limit int) ([]readmodel.PopularProductRM, error) {
	var out []readmodel.PopularProductRM
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		sales, err := tx.Products().FindTopSelling(ctx, since, until, limit)
		if err != nil {
			return err
		}
		out = readmodel.FromSales(sales)
		return nil
	})
	return out, err
}

// bucketBounds returns the half-open calendar bucket [start, end) containing at.
func bucketBounds(period keygen.Period, at time.Time) (time.Time, time.Time) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	switch period {
	case keygen.Weekly:
		// ISO weeks start on Monday
		start := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return start, start.AddDate(0, 0, 7)
	case keygen.Monthly:
		start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return day, day.AddDate(0, 0, 1)
	}
}
