package coupon

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrInvalidDiscountKind    = errors.New("discount must be either a fixed amount or a percentage")
)

type DiscountType string

const (
	DiscountFixed   DiscountType = "FIXED"
	DiscountPercent DiscountType = "PERCENT"
)

type Discount struct {
	kind  DiscountType
	value decimal.Decimal
}

func NewFixedDiscount(amount decimal.Decimal) (Discount, error) {
	if amount.IsNegative() {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{kind: DiscountFixed, value: amount}, nil
}

func NewPercentageDiscount(percent decimal.Decimal) (Discount, error) {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return Discount{}, ErrInvalidDiscountPercent
	}
	return Discount{kind: DiscountPercent, value: percent}, nil
}

func NewDiscount(kind DiscountType, value decimal.Decimal) (Discount, error) {
	switch kind {
	case DiscountFixed:
		return NewFixedDiscount(value)
	case DiscountPercent:
		return NewPercentageDiscount(value)
	default:
		return Discount{}, ErrInvalidDiscountKind
	}
}

func (d Discount) Type() DiscountType     { return d.kind }
func (d Discount) Value() decimal.Decimal { return d.value }

// AmountFor returns how much is taken off price, never more than price itself.
func (d Discount) AmountFor(price decimal.Decimal) decimal.Decimal {
	var off decimal.Decimal
	if d.kind == DiscountPercent {
		off = price.Mul(d.value).Div(decimal.NewFromInt(100)).Floor()
	} else {
		off = d.value
	}
	if off.GreaterThan(price) {
		return price
	}
	return off
}

func (d Discount) Apply(price decimal.Decimal) decimal.Decimal {
	return price.Sub(d.AmountFor(price))
}
