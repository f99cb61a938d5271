package commands

//go:generate mockgen -source=coupon.go -destination=../../../tests/mock/commands/coupon_mock.go -package=commandsmock

import (
	"context"
	"log/slog"

	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"
)

type CouponCommands interface {
	Issue(ctx context.Context, userID, couponID int64) (*readmodel.CouponIssueRM, error)
}

type couponCommandsImpl struct {
	uow       shared.UnitOfWork
	guard     *shared.LockGuard
	cache     *shared.CacheAside
	publisher shared.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewCouponCommands(
	uow shared.UnitOfWork,
	guard *shared.LockGuard,
	cache *shared.CacheAside,
	publisher shared.Publisher,
	clk clock.Clock,
	logger *slog.Logger,
) CouponCommands {
	return &couponCommandsImpl{
		uow:       uow,
		guard:     guard,
		cache:     cache,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// Issue gives one unit of a limited coupon to a user. Attempts on the same
// coupon are serialized by its lock; whoever gets the lock first is served
// first, with no ordering promised beyond that.
func (uc *couponCommandsImpl) Issue(ctx context.Context, userID, couponID int64) (*readmodel.CouponIssueRM, error) {
	if err := validateID(userID, "user"); err != nil {
		return nil, err
	}
	if err := validateID(couponID, "coupon"); err != nil {
		return nil, err
	}

	var issued readmodel.CouponIssueRM
	err := uc.guard.Run(ctx, keygen.CouponLock(couponID), func(ctx context.Context) error {
		return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			if err := ensureUserExists(ctx, tx, userID); err != nil {
				return err
			}

			already, err := tx.CouponHistories().ExistsByUserAndCoupon(ctx, userID, couponID)
			if err != nil {
				return err
			}
			if already {
				return errs.Wrapf(errs.ErrAlreadyIssued, "user %d coupon %d", userID, couponID)
			}

			c, err := tx.Coupons().FindByIDForUpdate(ctx, couponID)
			if err != nil {
				return err
			}

			history, err := c.Issue(userID, uc.clock.Now())
			if err != nil {
				return err
			}
			if err := tx.Coupons().Save(ctx, c); err != nil {
				return err
			}
			if err := tx.CouponHistories().Save(ctx, history); err != nil {
				return err
			}

			issued = readmodel.CouponIssueRM{
				HistoryID:         history.ID(),
				UserID:            userID,
				CouponID:          couponID,
				RemainingQuantity: c.RemainingQuantity(),
				IssuedAt:          history.IssuedAt(),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, nil, keygen.CouponListPattern(userID))

	event, err := shared.NewEvent(shared.TopicCouponIssued, keyOf(couponID), shared.CouponIssuedPayload{
		UserID:    userID,
		CouponID:  couponID,
		HistoryID: issued.HistoryID,
	}, uc.clock.Now())
	if err != nil {
		uc.logger.Warn("failed to build event", slog.String("topic", shared.TopicCouponIssued), slog.String("error", err.Error()))
	} else {
		uc.publisher.PublishAsync(ctx, shared.TopicCouponIssued, event)
	}

	return &issued, nil
}
