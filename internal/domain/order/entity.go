package order

import (
	"time"

	"commerce-server/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrEmptyItems = errs.ErrEmptyOrderItems

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	id              int64
	userID          int64
	items           []Item
	totalAmount     decimal.Decimal
	discountAmount  decimal.Decimal
	couponHistoryID *int64
	status          Status
	createdAt       time.Time
	updatedAt       time.Time
}

func NewOrder(userID int64, items []Item, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, errs.ErrInvalidQuantity
		}
		total = total.Add(it.Subtotal())
	}
	return &Order{
		userID:         userID,
		items:          append([]Item(nil), items...),
		totalAmount:    total,
		discountAmount: decimal.Zero,
		status:         StatusPending,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func Reconstruct(
	id, userID int64,
	items []Item,
	totalAmount, discountAmount decimal.Decimal,
	couponHistoryID *int64,
	status Status,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:              id,
		userID:          userID,
		items:           items,
		totalAmount:     totalAmount,
		discountAmount:  discountAmount,
		couponHistoryID: couponHistoryID,
		status:          status,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (o *Order) CheckPayable(userID int64) error {
	if o.userID != userID {
		return errs.Wrapf(errs.ErrOrderNotOwned, "order %d", o.id)
	}
	if o.status != StatusPending {
		return errs.Wrapf(errs.ErrInvalidOrderStatus, "order %d is %s", o.id, o.status)
	}
	return nil
}

// ApplyCoupon records the discount taken off by an issued coupon.
func (o *Order) ApplyCoupon(historyID int64, discount decimal.Decimal, now time.Time) {
	if discount.GreaterThan(o.totalAmount) {
		discount = o.totalAmount
	}
	o.discountAmount = discount
	o.couponHistoryID = &historyID
	o.updatedAt = now
}

func (o *Order) Complete(now time.Time) error {
	if o.status != StatusPending {
		return errs.Wrapf(errs.ErrInvalidOrderStatus, "order %d is %s", o.id, o.status)
	}
	o.status = StatusCompleted
	o.updatedAt = now
	return nil
}

func (o *Order) ID() int64                       { return o.id }
func (o *Order) UserID() int64                   { return o.userID }
func (o *Order) Items() []Item                   { return o.items }
func (o *Order) TotalAmount() decimal.Decimal    { return o.totalAmount }
func (o *Order) DiscountAmount() decimal.Decimal { return o.discountAmount }
func (o *Order) FinalAmount() decimal.Decimal    { return o.totalAmount.Sub(o.discountAmount) }
func (o *Order) CouponHistoryID() *int64         { return o.couponHistoryID }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }

func (o *Order) AssignID(id int64) { o.id = id }
