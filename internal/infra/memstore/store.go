// Package memstore is an in-process implementation of the unit of work used
// for local runs and tests. Write transactions are serialized and applied
// atomically on commit.
package memstore

import (
	"context"
	"maps"
	"sync"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/domain/order"
	"commerce-server/internal/domain/product"
	"commerce-server/internal/domain/user"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/shared"
)

var errReadOnly = errs.New("write attempted in read-only transaction")

type tables struct {
	users     map[int64]user.User
	balances  map[int64]balance.Balance
	coupons   map[int64]coupon.Coupon
	histories map[int64]coupon.History
	products  map[int64]product.Product
	orders    map[int64]order.Order
	payments  map[int64]order.Payment // keyed by order id

	seq sequences
}

type sequences struct {
	user, coupon, history, product, order, payment int64
}

func newTables() *tables {
	return &tables{
		users:     make(map[int64]user.User),
		balances:  make(map[int64]balance.Balance),
		coupons:   make(map[int64]coupon.Coupon),
		histories: make(map[int64]coupon.History),
		products:  make(map[int64]product.Product),
		orders:    make(map[int64]order.Order),
		payments:  make(map[int64]order.Payment),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:     maps.Clone(t.users),
		balances:  maps.Clone(t.balances),
		coupons:   maps.Clone(t.coupons),
		histories: maps.Clone(t.histories),
		products:  maps.Clone(t.products),
		orders:    maps.Clone(t.orders),
		payments:  maps.Clone(t.payments),
		seq:       t.seq,
	}
}

type Store struct {
	mu    sync.RWMutex
	state *tables
}

func New() *Store {
	return &Store{state: newTables()}
}

// Within runs fn against a private copy of the tables and publishes the copy
// only if fn succeeds.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &memTx{t: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &memTx{t: s.state, readOnly: true})
}

type memTx struct {
	t        *tables
	readOnly bool
}

func (tx *memTx) checkWritable() error {
	if tx.readOnly {
		return errReadOnly
	}
	return nil
}

func (tx *memTx) Users() shared.UserRepository                    { return userRepo{tx} }
func (tx *memTx) Balances() shared.BalanceRepository              { return balanceRepo{tx} }
func (tx *memTx) Coupons() shared.CouponRepository                { return couponRepo{tx} }
func (tx *memTx) CouponHistories() shared.CouponHistoryRepository { return historyRepo{tx} }
func (tx *memTx) Products() shared.ProductRepository              { return productRepo{tx} }
func (tx *memTx) Orders() shared.OrderRepository                  { return orderRepo{tx} }
func (tx *memTx) Payments() shared.PaymentRepository              { return paymentRepo{tx} }

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
