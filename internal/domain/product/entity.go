package product

import (
	"errors"
	"strings"
	"time"

	"commerce-server/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("product name cannot be empty")
	ErrNegativePrice = errors.New("product price cannot be negative")
	ErrNegativeStock = errors.New("product stock cannot be negative")
)

type Product struct {
	id        int64
	name      string
	price     decimal.Decimal
	stock     int
	createdAt time.Time
}

func NewProduct(name string, price decimal.Decimal, stock int, now time.Time) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	return &Product{name: name, price: price, stock: stock, createdAt: now}, nil
}

func Reconstruct(id int64, name string, price decimal.Decimal, stock int, createdAt time.Time) *Product {
	return &Product{id: id, name: name, price: price, stock: stock, createdAt: createdAt}
}

// Update replaces the fields that are set. Validation matches NewProduct and
// nothing changes when any field is rejected.
func (p *Product) Update(name *string, price *decimal.Decimal, stock *int) error {
	next := *p
	if name != nil {
		next.name = strings.TrimSpace(*name)
		if next.name == "" {
			return ErrEmptyName
		}
	}
	if price != nil {
		if price.IsNegative() {
			return ErrNegativePrice
		}
		next.price = *price
	}
	if stock != nil {
		if *stock < 0 {
			return ErrNegativeStock
		}
		next.stock = *stock
	}
	*p = next
	return nil
}

func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return errs.ErrInvalidQuantity
	}
	if p.stock < quantity {
		return errs.Wrapf(errs.ErrInsufficientStock, "product %d: stock %d, requested %d", p.id, p.stock, quantity)
	}
	p.stock -= quantity
	return nil
}

func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return errs.ErrInvalidQuantity
	}
	p.stock += quantity
	return nil
}

func (p *Product) ID() int64              { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Stock() int             { return p.stock }
func (p *Product) CreatedAt() time.Time   { return p.createdAt }

func (p *Product) AssignID(id int64) { p.id = id }

// Sales is a product with the quantity sold inside some window.
type Sales struct {
	Product      *Product
	SoldQuantity int
}
