//go:build unit || e2e

package builder

import (
	"time"

	"commerce-server/internal/domain/product"
	"commerce-server/internal/usecase/readmodel"

	"github.com/shopspring/decimal"
)

type ProductBuilder struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Stock     int
	CreatedAt time.Time
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:        1,
		Name:      "Mechanical Keyboard",
		Price:     decimal.NewFromInt(12000),
		Stock:     10,
		CreatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(b)
	return b
}

func (b *ProductBuilder) BuildDomain() *product.Product {
	return product.Reconstruct(b.ID, b.Name, b.Price, b.Stock, b.CreatedAt)
}

// BuildNew returns a product without an ID, ready to be saved.
func (b *ProductBuilder) BuildNew() *product.Product {
	p, err := product.NewProduct(b.Name, b.Price, b.Stock, b.CreatedAt)
	if err != nil {
		panic(err)
	}
	return p
}

func (b *ProductBuilder) BuildReadModel() *readmodel.ProductRM {
	rm := readmodel.FromProduct(b.BuildDomain())
	return &rm
}
