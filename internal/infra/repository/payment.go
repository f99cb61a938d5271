package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/order"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"

	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewPaymentRepository(db DBTX, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID int64) (*order.Payment, error) {
	var (
		id, userID int64
		amount     decimal.Decimal
		status     string
		paidAt     time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, amount, status, paid_at FROM payments WHERE order_id = $1`, orderID,
	).Scan(&id, &userID, &amount, &status, &paidAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrOrderNotFound, "payment for order %d", orderID)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find payment", err)
	}
	return order.ReconstructPayment(id, orderID, userID, amount, order.PaymentStatus(status), paidAt), nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *order.Payment) error {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, user_id, amount, status, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.OrderID(), p.UserID(), p.Amount(), string(p.Status()), p.PaidAt(),
	).Scan(&id)
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return errs.Wrapf(errs.ErrInvalidOrderStatus, "order %d already paid", p.OrderID())
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create payment", err)
	}
	p.AssignID(id)
	return nil
}
