package coupon

import (
	"errors"
	"strings"
	"time"

	"commerce-server/internal/pkg/errs"
)

var (
	ErrEmptyName       = errors.New("coupon name cannot be empty")
	ErrInvalidQuantity = errors.New("coupon quantity must satisfy 0 <= remaining <= total")
	ErrInvalidValidity = errors.New("coupon validity window ends before it starts")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusExpired  Status = "EXPIRED"
)

// Coupon is a limited offer. remainingQuantity only decreases, one unit per
// issued History, and stays within [0, totalQuantity].
type Coupon struct {
	id                int64
	name              string
	discount          Discount
	totalQuantity     int
	remainingQuantity int
	status            Status
	validFrom         *time.Time
	validUntil        *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

func NewCoupon(name string, discount Discount, totalQuantity int, validFrom, validUntil *time.Time, now time.Time) (*Coupon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if totalQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if validFrom != nil && validUntil != nil && validUntil.Before(*validFrom) {
		return nil, ErrInvalidValidity
	}
	return &Coupon{
		name:              name,
		discount:          discount,
		totalQuantity:     totalQuantity,
		remainingQuantity: totalQuantity,
		status:            StatusActive,
		validFrom:         validFrom,
		validUntil:        validUntil,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func Reconstruct(
	id int64,
	name string,
	discount Discount,
	totalQuantity, remainingQuantity int,
	status Status,
	validFrom, validUntil *time.Time,
	createdAt, updatedAt time.Time,
) (*Coupon, error) {
	if remainingQuantity < 0 || remainingQuantity > totalQuantity {
		return nil, ErrInvalidQuantity
	}
	return &Coupon{
		id:                id,
		name:              name,
		discount:          discount,
		totalQuantity:     totalQuantity,
		remainingQuantity: remainingQuantity,
		status:            status,
		validFrom:         validFrom,
		validUntil:        validUntil,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (c *Coupon) ValidateUsage(t time.Time) error {
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return errs.Wrapf(errs.ErrCouponNotYetValid, "coupon %d", c.id)
	}
	if c.validUntil != nil && t.After(*c.validUntil) {
		return errs.Wrapf(errs.ErrCouponExpired, "coupon %d", c.id)
	}
	return nil
}

func (c *Coupon) CheckIssuable(now time.Time) error {
	if c.status != StatusActive {
		return errs.Wrapf(errs.ErrCouponInactive, "coupon %d", c.id)
	}
	if err := c.ValidateUsage(now); err != nil {
		return err
	}
	if c.remainingQuantity <= 0 {
		return errs.Wrapf(errs.ErrSoldOut, "coupon %d", c.id)
	}
	return nil
}

// Issue takes one unit of stock and returns the history row recording it.
func (c *Coupon) Issue(userID int64, now time.Time) (*History, error) {
	if err := c.CheckIssuable(now); err != nil {
		return nil, err
	}
	c.remainingQuantity--
	c.updatedAt = now
	return NewHistory(userID, c.id, now), nil
}

func (c *Coupon) Deactivate(now time.Time) {
	c.status = StatusInactive
	c.updatedAt = now
}

// Expire marks an active coupon whose validity window has closed. It
// reports whether the status changed.
func (c *Coupon) Expire(now time.Time) bool {
	if c.status != StatusActive || c.validUntil == nil || !now.After(*c.validUntil) {
		return false
	}
	c.status = StatusExpired
	c.updatedAt = now
	return true
}

func (c *Coupon) ID() int64              { return c.id }
func (c *Coupon) Name() string           { return c.name }
func (c *Coupon) Discount() Discount     { return c.discount }
func (c *Coupon) TotalQuantity() int     { return c.totalQuantity }
func (c *Coupon) RemainingQuantity() int { return c.remainingQuantity }
func (c *Coupon) IssuedQuantity() int    { return c.totalQuantity - c.remainingQuantity }
func (c *Coupon) Status() Status         { return c.status }
func (c *Coupon) ValidFrom() *time.Time  { return c.validFrom }
func (c *Coupon) ValidUntil() *time.Time { return c.validUntil }
func (c *Coupon) CreatedAt() time.Time   { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time   { return c.updatedAt }

func (c *Coupon) AssignID(id int64) { c.id = id }
