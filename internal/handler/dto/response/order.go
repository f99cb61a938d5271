package response

import (
	"time"

	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/readmodel"
)

type OrderItemResponse struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

type OrderResponse struct {
	ID              int64               `json:"id"`
	UserID          int64               `json:"userId"`
	Items           []OrderItemResponse `json:"items"`
	TotalAmount     string              `json:"totalAmount"`
	DiscountAmount  string              `json:"discountAmount"`
	FinalAmount     string              `json:"finalAmount"`
	CouponHistoryID *int64              `json:"couponHistoryId,omitempty"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type PaymentResponse struct {
	ID      int64     `json:"id"`
	OrderID int64     `json:"orderId"`
	Amount  string    `json:"amount"`
	Status  string    `json:"status"`
	PaidAt  time.Time `json:"paidAt"`
}

type PayOrderResponse struct {
	Order   OrderResponse   `json:"order"`
	Payment PaymentResponse `json:"payment"`
	Balance BalanceResponse `json:"balance"`
}

func FromOrderRM(rm *readmodel.OrderRM) *OrderResponse {
	res := toOrderResponse(rm)
	return &res
}

func FromOrderRMs(rms []readmodel.OrderRM) []OrderResponse {
	out := make([]OrderResponse, len(rms))
	for i := range rms {
		out[i] = toOrderResponse(&rms[i])
	}
	return out
}

func FromPayOrderResult(r *commands.PayOrderResult) *PayOrderResponse {
	return &PayOrderResponse{
		Order:   toOrderResponse(&r.Order),
		Payment: mustCopy[PaymentResponse](&r.Payment),
		Balance: mustCopy[BalanceResponse](&r.Balance),
	}
}

func toOrderResponse(rm *readmodel.OrderRM) OrderResponse {
	res := mustCopy[OrderResponse](rm)
	res.Items = mustCopySlice[OrderItemResponse](rm.Items)
	return res
}
