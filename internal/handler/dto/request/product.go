package request

import (
	"commerce-server/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

// Price and stock are validated by the domain; binding cannot tell a zero decimal from a missing one.
type CreateProductRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

func (r CreateProductRequest) ToInput() commands.CreateProductInput {
	return commands.CreateProductInput{Name: r.Name, Price: r.Price, Stock: r.Stock}
}

// UpdateProductRequest leaves absent fields unchanged.
type UpdateProductRequest struct {
	Name  *string          `json:"name,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock *int             `json:"stock,omitempty"`
}

func (r UpdateProductRequest) ToInput() commands.UpdateProductInput {
	return commands.UpdateProductInput{Name: r.Name, Price: r.Price, Stock: r.Stock}
}
