package request

import "commerce-server/internal/usecase/commands"

type OrderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	UserID int64              `json:"userId" binding:"required,gt=0"`
	Items  []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (r CreateOrderRequest) ToInputs() []commands.OrderItemInput {
	out := make([]commands.OrderItemInput, len(r.Items))
	for i, it := range r.Items {
		out[i] = commands.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

type PayOrderRequest struct {
	UserID          int64  `json:"userId" binding:"required,gt=0"`
	CouponHistoryID *int64 `json:"couponHistoryId,omitempty" binding:"omitempty,gt=0"`
}

func (r PayOrderRequest) ToInput(orderID int64) commands.PayOrderInput {
	return commands.PayOrderInput{
		OrderID:         orderID,
		UserID:          r.UserID,
		CouponHistoryID: r.CouponHistoryID,
	}
}
