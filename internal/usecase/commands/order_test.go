//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/domain/order"
	"commerce-server/internal/domain/product"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
	"commerce-server/tests/common/builder"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderCommandsTestSuite struct {
	commandSuite
}

func TestOrderCommandsSuite(t *testing.T) {
	suite.Run(t, new(OrderCommandsTestSuite))
}

func (s *OrderCommandsTestSuite) stockOf(productID int64) int {
	var p *product.Product
	s.Require().NoError(s.store.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		p, err = tx.Products().FindByID(ctx, productID)
		return err
	}))
	return p.Stock()
}

func (s *OrderCommandsTestSuite) orderOf(orderID int64) *order.Order {
	var o *order.Order
	s.Require().NoError(s.store.WithinReadOnly(s.ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		o, err = tx.Orders().FindByID(ctx, orderID)
		return err
	}))
	return o
}

func (s *OrderCommandsTestSuite) TestCreate() {
	s.Run("reserves stock and records a pending order", func() {
		userID := s.createUser("alice")
		keyboard := s.createProduct("keyboard", 12000, 5)
		mouse := s.createProduct("mouse", 3000, 5)

		rm, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{
			{ProductID: mouse, Quantity: 1},
			{ProductID: keyboard, Quantity: 2},
			{ProductID: mouse, Quantity: 1},
		})
		s.Require().NoError(err)

		s.Equal(string(order.StatusPending), rm.Status)
		s.True(rm.TotalAmount.Equal(decimal.NewFromInt(30000)), rm.TotalAmount.String())
		s.Require().Len(rm.Items, 2)
		s.Equal(keyboard, rm.Items[0].ProductID)
		s.Equal(3, s.stockOf(keyboard))
		s.Equal(3, s.stockOf(mouse))
	})

	s.Run("insufficient stock rolls back every reservation", func() {
		userID := s.createUser("bob")
		plenty := s.createProduct("cable", 500, 10)
		scarce := s.createProduct("monitor", 200000, 1)

		_, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{
			{ProductID: plenty, Quantity: 3},
			{ProductID: scarce, Quantity: 2},
		})
		s.True(errs.Is(err, errs.ErrInsufficientStock))
		s.Equal(10, s.stockOf(plenty))
		s.Equal(1, s.stockOf(scarce))
	})

	s.Run("rejects empty orders and bad quantities", func() {
		userID := s.createUser("carol")

		_, err := s.orders.Create(s.ctx, userID, nil)
		s.True(errs.HasCategory(err, errs.ErrValidation))

		_, err = s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: 1, Quantity: 0}})
		s.True(errs.Is(err, errs.ErrInvalidQuantity))
	})

	s.Run("unknown product is not found", func() {
		userID := s.createUser("dave")
		_, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: 9999, Quantity: 1}})
		s.True(errs.Is(err, errs.ErrProductNotFound))
	})

	s.Run("evicts the product detail cache", func() {
		userID := s.createUser("erin")
		productID := s.createProduct("pad", 1000, 3)
		s.Require().NoError(s.aside.Put(s.ctx, keygen.ProductKey(productID), readmodel.ProductRM{ID: productID, Stock: 3}, time.Hour))

		_, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		_, found, _ := s.cache.Get(s.ctx, keygen.ProductKey(productID))
		s.False(found)
	})
}

func (s *OrderCommandsTestSuite) TestConcurrentCreate() {
	s.Run("stock is never oversold", func() {
		productID := s.createProduct("limited", 1000, 5)
		users := make([]int64, 12)
		for i := range users {
			users[i] = s.createUser("buyer")
		}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
		)
		for _, userID := range users {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
				if err == nil {
					mu.Lock()
					created++
					mu.Unlock()
					return
				}
				s.True(errs.Is(err, errs.ErrInsufficientStock), "%v", err)
			}()
		}
		wg.Wait()

		s.Equal(5, created)
		s.Equal(0, s.stockOf(productID))
	})
}

func (s *OrderCommandsTestSuite) TestPay() {
	s.Run("deducts the balance and completes the order", func() {
		userID := s.createUserWithBalance("alice", 50000)
		productID := s.createProduct("keyboard", 12000, 5)
		created, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 2}})
		s.Require().NoError(err)

		result, err := s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: userID})
		s.Require().NoError(err)

		s.Equal(string(order.StatusCompleted), result.Order.Status)
		s.True(result.Payment.Amount.Equal(decimal.NewFromInt(24000)))
		s.True(result.Balance.Amount.Equal(decimal.NewFromInt(26000)))
		s.Equal(order.StatusCompleted, s.orderOf(created.ID).Status())
	})

	s.Run("applies an issued coupon and marks it used", func() {
		userID := s.createUserWithBalance("bob", 50000)
		productID := s.createProduct("mouse", 10000, 5)
		couponID := s.createCoupon(func(b *builder.CouponBuilder) {
			b.DiscountType = coupon.DiscountPercent
			b.DiscountValue = decimal.NewFromInt(10)
		})
		issued, err := s.coupons.Issue(s.ctx, userID, couponID)
		s.Require().NoError(err)
		created, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		result, err := s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: userID, CouponHistoryID: &issued.HistoryID})
		s.Require().NoError(err)

		s.True(result.Order.DiscountAmount.Equal(decimal.NewFromInt(1000)), result.Order.DiscountAmount.String())
		s.True(result.Order.FinalAmount.Equal(decimal.NewFromInt(9000)))
		s.True(result.Balance.Amount.Equal(decimal.NewFromInt(41000)))

		other, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)
		_, err = s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: other.ID, UserID: userID, CouponHistoryID: &issued.HistoryID})
		s.True(errs.Is(err, errs.ErrCouponNotUsable), "%v", err)
	})

	s.Run("insufficient balance leaves everything untouched", func() {
		userID := s.createUserWithBalance("carol", 100)
		productID := s.createProduct("monitor", 200000, 1)
		created, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		_, err = s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: userID})
		s.True(errs.Is(err, errs.ErrInsufficientBalance))

		s.Equal(order.StatusPending, s.orderOf(created.ID).Status())
		stored, _ := s.balanceOf(userID)
		s.True(stored.Equal(decimal.NewFromInt(100)))
	})

	s.Run("an order is paid at most once", func() {
		userID := s.createUserWithBalance("dave", 100000)
		productID := s.createProduct("pen", 1000, 10)
		created, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			paid int
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := retryOnConflict(func() (*commands.PayOrderResult, error) {
					return s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: userID})
				})
				if err == nil {
					mu.Lock()
					paid++
					mu.Unlock()
					return
				}
				s.True(errs.Is(err, errs.ErrInvalidOrderStatus), "%v", err)
			}()
		}
		wg.Wait()

		s.Equal(1, paid)
		stored, _ := s.balanceOf(userID)
		s.True(stored.Equal(decimal.NewFromInt(99000)))
	})

	s.Run("another user's order cannot be paid", func() {
		owner := s.createUserWithBalance("erin", 100000)
		other := s.createUserWithBalance("frank", 100000)
		productID := s.createProduct("cup", 1000, 10)
		created, err := s.orders.Create(s.ctx, owner, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		_, err = s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: other})
		s.True(errs.Is(err, errs.ErrOrderNotOwned))
	})

	s.Run("completion evicts ranking and popular caches through the event bus", func() {
		userID := s.createUserWithBalance("grace", 100000)
		productID := s.createProduct("lamp", 1000, 10)
		created, err := s.orders.Create(s.ctx, userID, []commands.OrderItemInput{{ProductID: productID, Quantity: 1}})
		s.Require().NoError(err)

		rankingKey := keygen.DailyRankingKey(s.clock.Now())
		popularKey := keygen.PopularKey(3, 5)
		s.Require().NoError(s.aside.Put(s.ctx, rankingKey, readmodel.RankingRM{}, time.Hour))
		s.Require().NoError(s.aside.Put(s.ctx, popularKey, []readmodel.PopularProductRM{}, time.Hour))

		_, err = s.orders.Pay(s.ctx, commands.PayOrderInput{OrderID: created.ID, UserID: userID})
		s.Require().NoError(err)
		s.bus.Wait()

		_, found, _ := s.cache.Get(s.ctx, rankingKey)
		s.False(found)
		_, found, _ = s.cache.Get(s.ctx, popularKey)
		s.False(found)
	})
}
