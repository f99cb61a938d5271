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
	"github.com/shopspring/decimal"
)

type CouponRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewCouponRepository(db DBTX, logger *slog.Logger) *CouponRepository {
	return &CouponRepository{db: db, logger: logger}
}

const couponColumns = `id, name, discount_type, discount_value, total_quantity, remaining_quantity,
		       status, valid_from, valid_until, created_at, updated_at`

func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return r.findByID(ctx, id, "")
}

// FindByIDForUpdate keeps a second issuer blocked on the row until this
// transaction ends, even if the application lock has lapsed.
func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return r.findByID(ctx, id, " FOR UPDATE")
}

func (r *CouponRepository) findByID(ctx context.Context, id int64, suffix string) (*coupon.Coupon, error) {
	c, err := r.scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`+suffix, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrCouponNotFound, "coupon %d", id)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find coupon", err)
	}
	return c, nil
}

func (r *CouponRepository) FindExpirable(ctx context.Context, now time.Time) ([]*coupon.Coupon, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+couponColumns+` FROM coupons
		WHERE status = $1 AND valid_until IS NOT NULL AND valid_until < $2
		ORDER BY id`,
		string(coupon.StatusActive), now,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find expirable coupons", err)
	}
	defer rows.Close()

	var out []*coupon.Coupon
	for rows.Next() {
		c, err := r.scanCoupon(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan coupon", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to iterate coupons", err)
	}
	return out, nil
}

func (r *CouponRepository) scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var (
		id                   int64
		name                 string
		discountType         string
		discountValue        decimal.Decimal
		total, remaining     int
		status               string
		validFrom, validTill pgtype.Timestamptz
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &discountType, &discountValue, &total, &remaining,
		&status, &validFrom, &validTill, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	discount, err := coupon.NewDiscount(coupon.DiscountType(discountType), discountValue)
	if err != nil {
		return nil, errs.Wrapf(err, "coupon %d", id)
	}
	return coupon.Reconstruct(id, name, discount, total, remaining, coupon.Status(status),
		pgconv.TimePtrFromPgtype(validFrom), pgconv.TimePtrFromPgtype(validTill), createdAt, updatedAt)
}

func (r *CouponRepository) Save(ctx context.Context, c *coupon.Coupon) error {
	if c.ID() == 0 {
		var id int64
		err := r.db.QueryRow(ctx, `
			INSERT INTO coupons (name, discount_type, discount_value, total_quantity, remaining_quantity,
			                     status, valid_from, valid_until, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			c.Name(), string(c.Discount().Type()), c.Discount().Value(), c.TotalQuantity(), c.RemainingQuantity(),
			string(c.Status()), pgconv.TimePtrToPgtype(c.ValidFrom()), pgconv.TimePtrToPgtype(c.ValidUntil()),
			c.CreatedAt(), c.UpdatedAt(),
		).Scan(&id)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create coupon", err)
		}
		c.AssignID(id)
		return nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE coupons
		SET remaining_quantity = $2, status = $3, updated_at = $4
		WHERE id = $1`,
		c.ID(), c.RemainingQuantity(), string(c.Status()), c.UpdatedAt(),
	)
	if err != nil {
		if pgconv.IsCheckViolation(err) {
			return errs.Wrapf(errs.ErrSoldOut, "coupon %d", c.ID())
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(errs.ErrCouponNotFound, "coupon %d", c.ID())
	}
	return nil
}
