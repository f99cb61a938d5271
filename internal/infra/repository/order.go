package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/order"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, total_amount, discount_amount, coupon_history_id, status, created_at, updated_at`

type OrderRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewOrderRepository(db DBTX, logger *slog.Logger) *OrderRepository {
	return &OrderRepository{db: db, logger: logger}
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	h, err := scanOrderHeader(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrOrderNotFound, "order %d", id)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find order", err)
	}

	items, err := r.findItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return h.toOrder(items[id]), nil
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list orders", err)
	}

	var headers []orderHeader
	for rows.Next() {
		h, err := scanOrderHeader(rows)
		if err != nil {
			rows.Close()
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan order", err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list orders", err)
	}
	if len(headers) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(headers))
	for i, h := range headers {
		ids[i] = h.id
	}
	items, err := r.findItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*order.Order, len(headers))
	for i, h := range headers {
		out[i] = h.toOrder(items[h.id])
	}
	return out, nil
}

// Save inserts the order with its items, or updates the mutable header fields
// of an existing order. Items never change after creation.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if o.ID() != 0 {
		tag, err := r.db.Exec(ctx, `
			UPDATE orders
			SET discount_amount = $2, coupon_history_id = $3, status = $4, updated_at = $5
			WHERE id = $1`,
			o.ID(), o.DiscountAmount(), pgconv.Int64PtrToPgtype(o.CouponHistoryID()), string(o.Status()), o.UpdatedAt(),
		)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update order", err)
		}
		if tag.RowsAffected() == 0 {
			return errs.Wrapf(errs.ErrOrderNotFound, "order %d", o.ID())
		}
		return nil
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, total_amount, discount_amount, coupon_history_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		o.UserID(), o.TotalAmount(), o.DiscountAmount(), pgconv.Int64PtrToPgtype(o.CouponHistoryID()),
		string(o.Status()), o.CreatedAt(), o.UpdatedAt(),
	).Scan(&id)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create order", err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items() {
		batch.Queue(
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
			id, it.ProductID, it.Quantity, it.UnitPrice,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create order items", err)
	}

	o.AssignID(id)
	return nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderIDs []int64) (map[int64][]order.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id`,
		orderIDs,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load order items", err)
	}
	defer rows.Close()

	out := make(map[int64][]order.Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			it      order.Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan order item", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to load order items", err)
	}
	return out, nil
}

type orderHeader struct {
	id, userID      int64
	total, discount decimal.Decimal
	couponHistoryID pgtype.Int8
	status          string
	createdAt       time.Time
	updatedAt       time.Time
}

func scanOrderHeader(row pgx.Row) (orderHeader, error) {
	var h orderHeader
	err := row.Scan(&h.id, &h.userID, &h.total, &h.discount, &h.couponHistoryID, &h.status, &h.createdAt, &h.updatedAt)
	return h, err
}

func (h orderHeader) toOrder(items []order.Item) *order.Order {
	return order.Reconstruct(h.id, h.userID, items, h.total, h.discount,
		pgconv.Int64PtrFromPgtype(h.couponHistoryID), order.Status(h.status), h.createdAt, h.updatedAt)
}
