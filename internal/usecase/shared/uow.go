package shared

import (
	"context"
	"time"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/domain/order"
	"commerce-server/internal/domain/product"
	"commerce-server/internal/domain/user"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to one transaction.
type Tx interface {
	Users() UserRepository
	Balances() BalanceRepository
	Coupons() CouponRepository
	CouponHistories() CouponHistoryRepository
	Products() ProductRepository
	Orders() OrderRepository
	Payments() PaymentRepository
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, u *user.User) error
}

type BalanceRepository interface {
	FindByUserID(ctx context.Context, userID int64) (*balance.Balance, error)
	// FindByUserIDForUpdate also locks the row until the transaction ends.
	FindByUserIDForUpdate(ctx context.Context, userID int64) (*balance.Balance, error)
	Save(ctx context.Context, b *balance.Balance) error
}

type CouponRepository interface {
	FindByID(ctx context.Context, id int64) (*coupon.Coupon, error)
	// FindByIDForUpdate also locks the row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*coupon.Coupon, error)
	// FindExpirable returns active coupons whose validity ended before now.
	FindExpirable(ctx context.Context, now time.Time) ([]*coupon.Coupon, error)
	Save(ctx context.Context, c *coupon.Coupon) error
}

type CouponHistoryRepository interface {
	FindByID(ctx context.Context, id int64) (*coupon.History, error)
	ExistsByUserAndCoupon(ctx context.Context, userID, couponID int64) (bool, error)
	FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*coupon.History, error)
	// ExpireIssued moves every unused history of the coupon to EXPIRED and
	// returns how many changed.
	ExpireIssued(ctx context.Context, couponID int64) (int, error)
	Save(ctx context.Context, h *coupon.History) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*product.Product, error)
	FindAll(ctx context.Context) ([]*product.Product, error)
	FindPage(ctx context.Context, limit, offset int) ([]*product.Product, error)
	// FindTopSelling ranks products by quantity sold in orders completed in [since, until).
	FindTopSelling(ctx context.Context, since, until time.Time, limit int) ([]product.Sales, error)
	// ReserveStock atomically takes quantity units of stock and returns the updated product.
	ReserveStock(ctx context.Context, id int64, quantity int) (*product.Product, error)
	Save(ctx context.Context, p *product.Product) error
	// Delete fails with ErrProductInUse while any order references the product.
	Delete(ctx context.Context, id int64) error
}

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]*order.Order, error)
	Save(ctx context.Context, o *order.Order) error
}

type PaymentRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) (*order.Payment, error)
	Save(ctx context.Context, p *order.Payment) error
}
