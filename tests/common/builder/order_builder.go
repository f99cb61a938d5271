//go:build unit || e2e

package builder

import (
	"time"

	"commerce-server/internal/handler/dto/request"
	"commerce-server/internal/usecase/readmodel"

	"github.com/shopspring/decimal"
)

type OrderBuilder struct {
	ID        int64
	UserID    int64
	Items     []request.OrderItemRequest
	UnitPrice decimal.Decimal
	Status    string
	Now       time.Time
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		ID:     1,
		UserID: 1,
		Items: []request.OrderItemRequest{
			{ProductID: 1, Quantity: 2},
		},
		UnitPrice: decimal.NewFromInt(12000),
		Status:    "PENDING",
		Now:       time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildCreateRequestDTO() request.CreateOrderRequest {
	return request.CreateOrderRequest{UserID: b.UserID, Items: b.Items}
}

func (b *OrderBuilder) BuildReadModel() *readmodel.OrderRM {
	items := make([]readmodel.OrderItemRM, len(b.Items))
	total := decimal.Zero
	for i, it := range b.Items {
		items[i] = readmodel.OrderItemRM{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: b.UnitPrice}
		total = total.Add(b.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &readmodel.OrderRM{
		ID:             b.ID,
		UserID:         b.UserID,
		Items:          items,
		TotalAmount:    total,
		DiscountAmount: decimal.Zero,
		FinalAmount:    total,
		Status:         b.Status,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}
