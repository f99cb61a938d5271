//go:build unit

package queries_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"commerce-server/internal/domain/order"
	"commerce-server/internal/domain/user"
	"commerce-server/internal/infra/cache"
	"commerce-server/internal/infra/memstore"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/queries"
	"commerce-server/internal/usecase/shared"
	"commerce-server/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProductQueriesTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memstore.Store
	mem     *cache.MemoryCache
	aside   *shared.CacheAside
	clock   *clock.MockClock
	queries queries.ProductQueries
	userID  int64
}

func TestProductQueriesSuite(t *testing.T) {
	suite.Run(t, new(ProductQueriesTestSuite))
}

func (s *ProductQueriesTestSuite) SetupTest() {
	s.ctx = context.Background()
	// a Wednesday
	s.clock = clock.NewMockClock(time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC))
	s.store = memstore.New()
	s.mem = cache.NewMemoryCache(s.clock, nil)
	s.aside = shared.NewCacheAside(s.mem, slog.New(slog.DiscardHandler))
	s.queries = queries.NewProductQueries(s.store, s.aside, s.clock)

	u, err := user.NewUser("buyer", s.clock.Now())
	s.Require().NoError(err)
	s.within(func(tx shared.Tx) error { return tx.Users().Create(s.ctx, u) })
	s.userID = u.ID()
}

func (s *ProductQueriesTestSuite) within(fn func(tx shared.Tx) error) {
	s.T().Helper()
	s.Require().NoError(s.store.Within(s.ctx, func(_ context.Context, tx shared.Tx) error { return fn(tx) }))
}

func (s *ProductQueriesTestSuite) product(name string) int64 {
	p := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) { b.Name = name }).BuildNew()
	s.within(func(tx shared.Tx) error { return tx.Products().Save(s.ctx, p) })
	return p.ID()
}

// sell records a completed order at the given time.
func (s *ProductQueriesTestSuite) sell(productID int64, quantity int, at time.Time) {
	o, err := order.NewOrder(s.userID, []order.Item{{ProductID: productID, Quantity: quantity, UnitPrice: decimal.NewFromInt(1000)}}, at)
	s.Require().NoError(err)
	s.Require().NoError(o.Complete(at))
	s.within(func(tx shared.Tx) error { return tx.Orders().Save(s.ctx, o) })
}

func (s *ProductQueriesTestSuite) TestGet() {
	s.Run("miss loads from the store and fills the cache", func() {
		id := s.product("keyboard")

		got, err := s.queries.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("keyboard", got.Name)

		_, found, err := s.mem.Get(s.ctx, keygen.ProductKey(id))
		s.Require().NoError(err)
		s.True(found)
	})

	s.Run("unknown product is not found and not cached", func() {
		_, err := s.queries.Get(s.ctx, 999)
		s.True(errs.Is(err, errs.ErrProductNotFound))

		_, found, _ := s.mem.Get(s.ctx, keygen.ProductKey(999))
		s.False(found)
	})

	s.Run("non-positive id is a validation error", func() {
		_, err := s.queries.Get(s.ctx, 0)
		s.True(errs.HasCategory(err, errs.ErrValidation))
	})
}

func (s *ProductQueriesTestSuite) TestPopular() {
	s.Run("no sales is an empty list, not nil", func() {
		got, err := s.queries.Popular(s.ctx, 1, 5)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})

	s.Run("ranks by units sold inside the window and serves from cache", func() {
		keyboard := s.product("keyboard")
		mouse := s.product("mouse")
		cable := s.product("cable")

		now := s.clock.Now()
		s.sell(keyboard, 2, now.Add(-time.Hour))
		s.sell(mouse, 5, now.Add(-24*time.Hour))
		s.sell(cable, 9, now.AddDate(0, 0, -10))

		got, err := s.queries.Popular(s.ctx, 3, 5)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(mouse, got[0].Product.ID)
		s.Equal(1, got[0].Rank)
		s.Equal(5, got[0].SoldQuantity)
		s.Equal(keyboard, got[1].Product.ID)

		s.sell(keyboard, 10, now.Add(-time.Minute))
		cached, err := s.queries.Popular(s.ctx, 3, 5)
		s.Require().NoError(err)
		s.Equal(mouse, cached[0].Product.ID)

		_, err = s.aside.EvictByPattern(s.ctx, keygen.ProductPopular.Pattern())
		s.Require().NoError(err)
		fresh, err := s.queries.Popular(s.ctx, 3, 5)
		s.Require().NoError(err)
		s.Equal(keyboard, fresh[0].Product.ID)
		s.Equal(12, fresh[0].SoldQuantity)
	})
}

func (s *ProductQueriesTestSuite) TestRanking() {
	s.Run("weekly ranking counts sales since monday", func() {
		keyboard := s.product("keyboard")
		mouse := s.product("mouse")

		monday := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
		s.sell(keyboard, 1, monday)
		s.sell(mouse, 4, monday.Add(-9*time.Hour))

		got, err := s.queries.Ranking(s.ctx, keygen.Weekly, time.Time{}, 10)
		s.Require().NoError(err)
		s.Equal(string(keygen.Weekly), got.Period)
		s.Equal(keygen.Weekly.Bucket(s.clock.Now()), got.Bucket)
		s.Require().Len(got.Products, 1)
		s.Equal(keyboard, got.Products[0].Product.ID)
	})

	s.Run("a past daily bucket ignores later sales", func() {
		pen := s.product("pen")
		cup := s.product("cup")
		day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
		s.sell(pen, 3, day.Add(10*time.Hour))
		s.sell(cup, 7, day.AddDate(0, 0, 1))

		got, err := s.queries.Ranking(s.ctx, keygen.Daily, day.Add(23*time.Hour), 10)
		s.Require().NoError(err)
		s.Equal("2026-01-10", got.Bucket)
		s.Require().Len(got.Products, 1)
		s.Equal(pen, got.Products[0].Product.ID)
	})
}
