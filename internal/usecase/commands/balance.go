package commands

//go:generate mockgen -source=balance.go -destination=../../../tests/mock/commands/balance_mock.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

type BalanceCommands interface {
	Charge(ctx context.Context, userID int64, amount decimal.Decimal) (*readmodel.BalanceRM, error)
	Deduct(ctx context.Context, userID int64, amount decimal.Decimal) (*readmodel.BalanceRM, error)
}

type balanceCommandsImpl struct {
	uow       shared.UnitOfWork
	guard     *shared.LockGuard
	cache     *shared.CacheAside
	publisher shared.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewBalanceCommands(
	uow shared.UnitOfWork,
	guard *shared.LockGuard,
	cache *shared.CacheAside,
	publisher shared.Publisher,
	clk clock.Clock,
	logger *slog.Logger,
) BalanceCommands {
	return &balanceCommandsImpl{
		uow:       uow,
		guard:     guard,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

func (uc *balanceCommandsImpl) Charge(ctx context.Context, userID int64, amount decimal.Decimal) (*readmodel.BalanceRM, error) {
	if err := validateID(userID, "user"); err != nil {
		return nil, err
	}
	if err := balance.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var charged readmodel.BalanceRM
	err := uc.guard.Run(ctx, keygen.BalanceLock(userID), func(ctx context.Context) error {
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := ensureUserExists(ctx, tx, userID); err != nil {
				return err
			}

			now := uc.clock.Now()
			b, err := tx.Balances().FindByUserIDForUpdate(ctx, userID)
			if errs.Is(err, errs.ErrBalanceNotFound) {
				b = balance.NewZero(userID, now)
			} else if err != nil {
				return err
			}

			if err := b.Charge(amount, now); err != nil {
				return err
			}
			if err := tx.Balances().Save(ctx, b); err != nil {
				return err
			}
			charged = readmodel.FromBalance(b)
			return nil
		})
		if err != nil {
			return err
		}
		// still under the lock, so refreshes land in commit order
		uc.cache.Refresh(ctx, keygen.BalanceKey(userID), charged, keygen.BalanceInfo.TTL())
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publishBalanceChanged(ctx, shared.TopicBalanceCharged, amount, charged)
	return &charged, nil
}

func (uc *balanceCommandsImpl) Deduct(ctx context.Context, userID int64, amount decimal.Decimal) (*readmodel.BalanceRM, error) {
	if err := validateID(userID, "user"); err != nil {
		return nil, err
	}
	if err := balance.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var deducted readmodel.BalanceRM
	err := uc.guard.Run(ctx, keygen.BalanceLock(userID), func(ctx context.Context) error {
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			b, err := deductBalance(ctx, tx, userID, amount, uc.clock.Now())
			if err != nil {
				return err
			}
			deducted = readmodel.FromBalance(b)
			return nil
		})
		if err != nil {
			return err
		}
		uc.cache.Invalidate(ctx, []string{keygen.BalanceKey(userID)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publishBalanceChanged(ctx, shared.TopicBalanceDeducted, amount, deducted)
	return &deducted, nil
}

// deductBalance must run while the caller holds the user's balance lock.
func deductBalance(ctx context.Context, tx shared.Tx, userID int64, amount decimal.Decimal, now time.Time) (*balance.Balance, error) {
	b, err := tx.Balances().FindByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := b.Deduct(amount, now); err != nil {
		return nil, err
	}
	if err := tx.Balances().Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *balanceCommandsImpl) publishBalanceChanged(ctx context.Context, topic string, amount decimal.Decimal, rm readmodel.BalanceRM) {
	event, err := shared.NewEvent(topic, keyOf(rm.UserID), shared.BalanceChangedPayload{
		UserID:  rm.UserID,
		Amount:  amount.String(),
		Balance: rm.Amount.String(),
	}, uc.clock.Now())
	if err != nil {
		uc.logger.Warn("failed to build event", slog.String("topic", topic), slog.String("error", err.Error()))
		return
	}
	uc.publisher.PublishAsync(ctx, topic, event)
}
