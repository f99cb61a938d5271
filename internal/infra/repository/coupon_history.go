package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const couponHistoryColumns = `id, user_id, coupon_id, status, issued_at, used_at`

type CouponHistoryRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCouponHistoryRepository(db DBTX, logger *slog.Logger) *CouponHistoryRepository {
	return &CouponHistoryRepository{db: db, logger: logger}
}

func (r *CouponHistoryRepository) FindByID(ctx context.Context, id int64) (*coupon.History, error) {
	row := r.db.QueryRow(ctx, `SELECT `+couponHistoryColumns+` FROM coupon_histories WHERE id = $1`, id)
	h, err := scanCouponHistory(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrCouponNotFound, "coupon history %d", id)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find coupon history", err)
	}
	return h, nil
}

func (r *CouponHistoryRepository) ExistsByUserAndCoupon(ctx context.Context, userID, couponID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupon_histories WHERE user_id = $1 AND coupon_id = $2)`,
		userID, couponID,
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check coupon history", err)
	}
	return exists, nil
}

func (r *CouponHistoryRepository) FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*coupon.History, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+couponHistoryColumns+`
		FROM coupon_histories
		WHERE user_id = $1
		ORDER BY issued_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list coupon histories", err)
	}
	defer rows.Close()

	var out []*coupon.History
	for rows.Next() {
		h, err := scanCouponHistory(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan coupon history", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list coupon histories", err)
	}
	return out, nil
}

func (r *CouponHistoryRepository) ExpireIssued(ctx context.Context, couponID int64) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE coupon_histories SET status = $3 WHERE coupon_id = $1 AND status = $2`,
		couponID, string(coupon.HistoryIssued), string(coupon.HistoryExpired),
	)
	if err != nil {
		return 0, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to expire coupon histories", err)
	}
	return int(tag.RowsAffected()), nil
}

// Save inserts new histories and updates status on existing ones. A second
// history for the same (user, coupon) violates the unique constraint and is
// reported as ErrAlreadyIssued.
func (r *CouponHistoryRepository) Save(ctx context.Context, h *coupon.History) error {
	if h.ID() == 0 {
		var id int64
		err := r.db.QueryRow(ctx, `
			INSERT INTO coupon_histories (user_id, coupon_id, status, issued_at, used_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			h.UserID(), h.CouponID(), string(h.Status()), h.IssuedAt(), pgconv.TimePtrToPgtype(h.UsedAt()),
		).Scan(&id)
		if err != nil {
			if pgconv.IsUniqueViolation(err) {
				return errs.Wrapf(errs.ErrAlreadyIssued, "user %d coupon %d", h.UserID(), h.CouponID())
			}
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create coupon history", err)
		}
		h.AssignID(id)
		return nil
	}

	_, err := r.db.Exec(ctx,
		`UPDATE coupon_histories SET status = $2, used_at = $3 WHERE id = $1`,
		h.ID(), string(h.Status()), pgconv.TimePtrToPgtype(h.UsedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update coupon history", err)
	}
	return nil
}

func scanCouponHistory(row pgx.Row) (*coupon.History, error) {
	var (
		id, userID, couponID int64
		status               string
		issuedAt             time.Time
		usedAt               pgtype.Timestamptz
	)
	if err := row.Scan(&id, &userID, &couponID, &status, &issuedAt, &usedAt); err != nil {
		return nil, err
	}
	return coupon.ReconstructHistory(id, userID, couponID, coupon.HistoryStatus(status), issuedAt, pgconv.TimePtrFromPgtype(usedAt)), nil
}
