package repository

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/product"
	"commerce-server/internal/infra"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.name, p.price, p.stock, p.created_at`

type ProductRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewProductRepository(db DBTX, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, logger: logger}
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.findByID(ctx, id, "")
}

// FindByIDForUpdate blocks stock reservations on the row until the
// transaction ends.
func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	return r.findByID(ctx, id, " FOR UPDATE")
}

func (r *ProductRepository) findByID(ctx context.Context, id int64, suffix string) (*product.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`+suffix, id)
	p, err := scanProduct(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
		}
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to find product", err)
	}
	return p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*product.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products p ORDER BY p.id`)
}

func (r *ProductRepository) FindPage(ctx context.Context, limit, offset int) ([]*product.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products p ORDER BY p.id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ProductRepository) FindTopSelling(ctx context.Context, since, until time.Time, limit int) ([]product.Sales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`, SUM(oi.quantity) AS sold
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = 'COMPLETED' AND o.updated_at >= $1 AND o.updated_at < $2
		GROUP BY p.id
		ORDER BY sold DESC, p.id ASC
		LIMIT $3`,
		since, until, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to rank products", err)
	}
	defer rows.Close()

	var out []product.Sales
	for rows.Next() {
		var (
			id        int64
			name      string
			price     decimal.Decimal
			stock     int
			createdAt time.Time
			sold      int64
		)
		if err := rows.Scan(&id, &name, &price, &stock, &createdAt, &sold); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan product sales", err)
		}
		out = append(out, product.Sales{
			Product:      product.Reconstruct(id, name, price, stock, createdAt),
			SoldQuantity: int(sold),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to rank products", err)
	}
	return out, nil
}

// ReserveStock decrements stock with a conditional update so concurrent
// orders for the same product never oversell.
func (r *ProductRepository) ReserveStock(ctx context.Context, id int64, quantity int) (*product.Product, error) {
	if quantity <= 0 {
		return nil, errs.Wrapf(errs.ErrInvalidQuantity, "quantity %d", quantity)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products p SET stock = p.stock - $2
		WHERE p.id = $1 AND p.stock >= $2
		RETURNING `+productColumns,
		id, quantity,
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !pgconv.IsNoRows(err) {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to reserve stock", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to check product", err)
	}
	if !exists {
		return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
	}
	return nil, errs.Wrapf(errs.ErrInsufficientStock, "product %d quantity %d", id, quantity)
}

func (r *ProductRepository) Save(ctx context.Context, p *product.Product) error {
	if p.ID() == 0 {
		var id int64
		err := r.db.QueryRow(ctx,
			`INSERT INTO products (name, price, stock, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
			p.Name(), p.Price(), p.Stock(), p.CreatedAt(),
		).Scan(&id)
		if err != nil {
			return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create product", err)
		}
		p.AssignID(id)
		return nil
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $2, price = $3, stock = $4 WHERE id = $1`,
		p.ID(), p.Name(), p.Price(), p.Stock(),
	)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to update product", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(errs.ErrProductNotFound, "product %d", p.ID())
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgconv.IsForeignKeyViolation(err) {
			return errs.Wrapf(errs.ErrProductInUse, "product %d", id)
		}
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
	}
	return nil
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list products", err)
	}
	defer rows.Close()

	var out []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to list products", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var (
		id        int64
		name      string
		price     decimal.Decimal
		stock     int
		createdAt time.Time
	)
	if err := row.Scan(&id, &name, &price, &stock, &createdAt); err != nil {
		return nil, err
	}
	return product.Reconstruct(id, name, price, stock, createdAt), nil
}
