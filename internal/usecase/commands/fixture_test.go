//go:build unit

package commands_test

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/domain/user"
	"commerce-server/internal/infra/cache"
	"commerce-server/internal/infra/lock"
	"commerce-server/internal/infra/memstore"
	"commerce-server/internal/infra/messaging"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/events"
	"commerce-server/internal/usecase/shared"
	"commerce-server/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// commandSuite wires the commands against in-process adapters.
type commandSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memstore.Store
	cache  *cache.MemoryCache
	aside  *shared.CacheAside
	locker *lock.MemoryLocker
	bus    *messaging.MemoryBus
	clock  *clock.MockClock

	balances commands.BalanceCommands
	coupons  commands.CouponCommands
	orders   commands.OrderCommands
	products commands.ProductCommands
}

func (s *commandSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.DiscardHandler)

	s.clock = clock.NewMockClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	s.store = memstore.New()
	s.cache = cache.NewMemoryCache(s.clock, nil)
	s.aside = shared.NewCacheAside(s.cache, logger)
	// leases are measured on the real clock so the mock can move freely
	s.locker = lock.NewMemoryLocker(clock.NewRealClock(), nil, logger)
	s.bus = messaging.NewMemoryBus([]messaging.Subscriber{events.NewCacheInvalidator(s.aside, logger)}, nil, logger)

	guard := shared.NewLockGuard(s.locker, config.LockConfig{HoldTimeout: 5 * time.Second}, logger)
	s.balances = commands.NewBalanceCommands(s.store, guard, s.aside, s.bus, s.clock, logger)
	s.coupons = commands.NewCouponCommands(s.store, guard, s.aside, s.bus, s.clock, logger)
	s.orders = commands.NewOrderCommands(s.store, guard, s.aside, s.bus, s.clock, logger)
	s.products = commands.NewProductCommands(s.store, s.aside, s.clock, logger)
}

func (s *commandSuite) TearDownTest() {
	s.bus.Wait()
}

func (s *commandSuite) within(fn func(tx shared.Tx) error) {
	s.T().Helper()
	s.Require().NoError(s.store.Within(s.ctx, func(_ context.Context, tx shared.Tx) error {
		return fn(tx)
	}))
}

func (s *commandSuite) createUser(name string) int64 {
	s.T().Helper()
	u, err := user.NewUser(name, s.clock.Now())
	s.Require().NoError(err)
	s.within(func(tx shared.Tx) error { return tx.Users().Create(s.ctx, u) })
	return u.ID()
}

func (s *commandSuite) createUserWithBalance(name string, amount int64) int64 {
	s.T().Helper()
	id := s.createUser(name)
	b := balance.Reconstruct(id, decimal.NewFromInt(amount), s.clock.Now())
	s.within(func(tx shared.Tx) error { return tx.Balances().Save(s.ctx, b) })
	return id
}

func (s *commandSuite) createProduct(name string, price int64, stock int) int64 {
	s.T().Helper()
	p := builder.NewProductBuilder().With(func(b *builder.ProductBuilder) {
		b.Name = name
		b.Price = decimal.NewFromInt(price)
		b.Stock = stock
		b.CreatedAt = s.clock.Now()
	}).BuildNew()
	s.within(func(tx shared.Tx) error { return tx.Products().Save(s.ctx, p) })
	return p.ID()
}

func (s *commandSuite) createCoupon(mutate func(*builder.CouponBuilder)) int64 {
	s.T().Helper()
	b := builder.NewCouponBuilder().With(func(b *builder.CouponBuilder) { b.Now = s.clock.Now() })
	if mutate != nil {
		b.With(mutate)
	}
	c := b.BuildNew()
	s.within(func(tx shared.Tx) error { return tx.Coupons().Save(s.ctx, c) })
	return c.ID()
}

func (s *commandSuite) balanceOf(userID int64) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := s.store.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Balances().FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		amount = b.Amount()
		return nil
	})
	return amount, err
}

// retryOnConflict repeats op while it fails with a lock conflict, the way a
// client is expected to.
func retryOnConflict[T any](op func() (T, error)) (T, error) {
	for {
		v, err := op()
		if err == nil || !isConflict(err) {
			return v, err
		}
		time.Sleep(time.Millisecond)
	}
}

func isConflict(err error) bool {
	return errs.HasCategory(err, errs.ErrConcurrencyConflict)
}
