package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"

	"github.com/shopspring/decimal"
)

type BalanceRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewBalanceRepository(db DBTX, logger *slog.Logger) *BalanceRepository {
	return &BalanceRepository{db: db, logger: logger}
}

func (r *BalanceRepository) FindByUserID(ctx context.Context, userID int64) (*balance.Balance, error) {
	return r.findByUserID(ctx, userID, "")
}

func (r *BalanceRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*balance.Balance, error) {
	return r.findByUserID(ctx, userID, " FOR UPDATE")
}

func (r *BalanceRepository) findByUserID(ctx context.Context, userID int64, suffix string) (*balance.Balance, error) {
	var (
		amount    decimal.Decimal
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT amount, updated_at FROM balances WHERE user_id = $1`+suffix, userID,
	).Scan(&amount, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrBalanceNotFound, "user %d", userID)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find balance", err)
	}
	return balance.Reconstruct(userID, amount, updatedAt), nil
}

func (r *BalanceRepository) Save(ctx context.Context, b *balance.Balance) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO balances (user_id, amount, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		b.UserID(), b.Amount(), b.UpdatedAt(),
	)
	if err != nil {
		if pgconv.IsForeignKeyViolation(err) {
			return errs.Wrapf(errs.ErrUserNotFound, "user %d", b.UserID())
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to save balance", err)
	}
	return nil
}
