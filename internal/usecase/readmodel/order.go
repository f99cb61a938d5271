package readmodel

import (
	"time"

	"commerce-server/internal/domain/order"

	"github.com/shopspring/decimal"
)

type OrderItemRM struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderRM struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Items           []OrderItemRM   `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	CouponHistoryID *int64          `json:"coupon_history_id,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type PaymentRM struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	PaidAt  time.Time       `json:"paid_at"`
}

func FromOrder(o *order.Order) OrderRM {
	items := make([]OrderItemRM, len(o.Items()))
	for i, it := range o.Items() {
		items[i] = OrderItemRM{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return OrderRM{
		ID:              o.ID(),
		UserID:          o.UserID(),
		Items:           items,
		TotalAmount:     o.TotalAmount(),
		DiscountAmount:  o.DiscountAmount(),
		FinalAmount:     o.FinalAmount(),
		CouponHistoryID: o.CouponHistoryID(),
		Status:          string(o.Status()),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func FromPayment(p *order.Payment) PaymentRM {
	return PaymentRM{
		ID:      p.ID(),
		OrderID: p.OrderID(),
		UserID:  p.UserID(),
		Amount:  p.Amount(),
		Status:  string(p.Status()),
		PaidAt:  p.PaidAt(),
	}
}
