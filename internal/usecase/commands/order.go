package commands

//go:generate mockgen -source=order.go -destination=../../../tests/mock/commands/order_mock.go -package=commandsmock

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"commerce-server/internal/domain/order"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

type PayOrderInput struct {
	OrderID         int64
	UserID          int64
	CouponHistoryID *int64
}

type PayOrderResult struct {
	Order   readmodel.OrderRM
	Payment readmodel.PaymentRM
	Balance readmodel.BalanceRM
}

type OrderCommands interface {
	Create(ctx context.Context, userID int64, items []OrderItemInput) (*readmodel.OrderRM, error)
	Pay(ctx context.Context, in PayOrderInput) (*PayOrderResult, error)
}

type orderCommandsImpl struct {
	uow       shared.UnitOfWork
	guard     *shared.LockGuard
	cache     *shared.CacheAside
	publisher shared.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	guard *shared.LockGuard,
	cache *shared.CacheAside,
	publisher shared.Publisher,
	clk clock.Clock,
	logger *slog.Logger,
) OrderCommands {
	return &orderCommandsImpl{
		uow:       uow,
		guard:     guard,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// Create reserves stock for every item and records a pending order.
func (uc *orderCommandsImpl) Create(ctx context.Context, userID int64, items []OrderItemInput) (*readmodel.OrderRM, error) {
	if err := validateID(userID, "user"); err != nil {
		return nil, err
	}
	merged, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	var created readmodel.OrderRM
	err = uc.guard.Run(ctx, keygen.OrderCreationLock(userID), func(ctx context.Context) error {
		return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := ensureUserExists(ctx, tx, userID); err != nil {
				return err
			}

			lines := make([]order.Item, 0, len(merged))
			for _, in := range merged {
				p, err := tx.Products().ReserveStock(ctx, in.ProductID, in.Quantity)
				if err != nil {
					return err
				}
				lines = append(lines, order.Item{ProductID: p.ID(), Quantity: in.Quantity, UnitPrice: p.Price()})
			}

			o, err := order.NewOrder(userID, lines, uc.clock.Now())
			if err != nil {
				return err
			}
			if err := tx.Orders().Save(ctx, o); err != nil {
				return err
			}
			created = readmodel.FromOrder(o)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(merged))
	for _, in := range merged {
		keys = append(keys, keygen.ProductKey(in.ProductID))
	}
	uc.cache.Invalidate(ctx, keys, keygen.OrderListPattern(userID), keygen.ProductList.Pattern())

	uc.publish(ctx, shared.TopicOrderCreated, created)
	return &created, nil
}

// Pay settles a pending order from the user's balance, optionally applying an
// issued coupon. It holds the order's payment lock and the user's balance lock.
func (uc *orderCommandsImpl) Pay(ctx context.Context, in PayOrderInput) (*PayOrderResult, error) {
	if err := validateID(in.OrderID, "order"); err != nil {
		return nil, err
	}
	if err := validateID(in.UserID, "user"); err != nil {
		return nil, err
	}

	var result PayOrderResult
	lockKeys := []string{keygen.PaymentLock(in.OrderID), keygen.BalanceLock(in.UserID)}
	err := uc.guard.RunAll(ctx, lockKeys, func(ctx context.Context) error {
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			now := uc.clock.Now()

			o, err := tx.Orders().FindByID(ctx, in.OrderID)
			if err != nil {
				return err
			}
			if err := o.CheckPayable(in.UserID); err != nil {
				return err
			}

			if in.CouponHistoryID != nil {
				if err := uc.applyCoupon(ctx, tx, o, in.UserID, *in.CouponHistoryID); err != nil {
					return err
				}
			}

			if o.FinalAmount().IsPositive() {
				b, err := deductBalance(ctx, tx, in.UserID, o.FinalAmount(), now)
				if err != nil {
					return err
				}
				result.Balance = readmodel.FromBalance(b)
			} else {
				b, err := tx.Balances().FindByUserID(ctx, in.UserID)
				if err != nil {
					return err
				}
				result.Balance = readmodel.FromBalance(b)
			}

			if err := o.Complete(now); err != nil {
				return err
			}
			if err := tx.Orders().Save(ctx, o); err != nil {
				return err
			}

			p := order.NewPayment(o, now)
			if err := tx.Payments().Save(ctx, p); err != nil {
				return err
			}

			result.Order = readmodel.FromOrder(o)
			result.Payment = readmodel.FromPayment(p)
			return nil
		})
		if err != nil {
			return err
		}
		uc.cache.Refresh(ctx, keygen.BalanceKey(in.UserID), result.Balance, keygen.BalanceInfo.TTL())
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx,
		[]string{keygen.OrderKey(in.OrderID)},
		keygen.OrderListPattern(in.UserID),
		keygen.CouponListPattern(in.UserID),
	)

	uc.publish(ctx, shared.TopicOrderCompleted, result.Order)
	return &result, nil
}

func (uc *orderCommandsImpl) applyCoupon(ctx context.Context, tx shared.Tx, o *order.Order, userID, historyID int64) error {
	h, err := tx.CouponHistories().FindByID(ctx, historyID)
	if err != nil {
		return err
	}
	if h.UserID() != userID {
		return errs.Wrapf(errs.ErrCouponNotUsable, "coupon history %d belongs to another user", historyID)
	}
	c, err := tx.Coupons().FindByID(ctx, h.CouponID())
	if err != nil {
		return err
	}

	now := uc.clock.Now()
	if err := c.ValidateUsage(now); err != nil {
		return err
	}
	if err := h.Use(now); err != nil {
		return err
	}
	if err := tx.CouponHistories().Save(ctx, h); err != nil {
		return err
	}

	o.ApplyCoupon(h.ID(), c.Discount().AmountFor(o.TotalAmount()), now)
	return nil
}

func (uc *orderCommandsImpl) publish(ctx context.Context, topic string, rm readmodel.OrderRM) {
	productIDs := make([]int64, len(rm.Items))
	for i, it := range rm.Items {
		productIDs[i] = it.ProductID
	}
	event, err := shared.NewEvent(topic, keyOf(rm.ID), shared.OrderPayload{
		OrderID:    rm.ID,
		UserID:     rm.UserID,
		ProductIDs: productIDs,
		Amount:     rm.FinalAmount.String(),
	}, uc.clock.Now())
	if err != nil {
		uc.logger.Warn("failed to build event", slog.String("topic", topic), slog.String("error", err.Error()))
		return
	}
	uc.publisher.PublishAsync(ctx, topic, event)
}

// mergeItems folds duplicate products together and sorts by product id so
// concurrent orders touch product rows in the same order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, errs.Wrap(errs.ErrInvalidQuantity, "order has no items")
	}
	byID := make(map[int64]int, len(items))
	for _, it := range items {
		if err := validateID(it.ProductID, "product"); err != nil {
			return nil, err
		}
		if it.Quantity <= 0 {
			return nil, errs.Wrapf(errs.ErrInvalidQuantity, "product %d quantity %d", it.ProductID, it.Quantity)
		}
		byID[it.ProductID] += it.Quantity
	}
	merged := make([]OrderItemInput, 0, len(byID))
	for id, q := range byID {
		merged = append(merged, OrderItemInput{ProductID: id, Quantity: q})
	}
	slices.SortFunc(merged, func(a, b OrderItemInput) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return merged, nil
}
