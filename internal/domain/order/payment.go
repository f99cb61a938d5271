package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const PaymentCompleted PaymentStatus = "COMPLETED"

type Payment struct {
	id      int64
	orderID int64
	userID  int64
	amount  decimal.Decimal
	status  PaymentStatus
	paidAt  time.Time
}

func NewPayment(o *Order, now time.Time) *Payment {
	return &Payment{
		orderID: o.ID(),
		userID:  o.UserID(),
		amount:  o.FinalAmount(),
		status:  PaymentCompleted,
		paidAt:  now,
	}
}

func ReconstructPayment(id, orderID, userID int64, amount decimal.Decimal, status PaymentStatus, paidAt time.Time) *Payment {
	return &Payment{id: id, orderID: orderID, userID: userID, amount: amount, status: status, paidAt: paidAt}
}

func (p *Payment) ID() int64               { return p.id }
func (p *Payment) OrderID() int64          { return p.orderID }
func (p *Payment) UserID() int64           { return p.userID }
func (p *Payment) Amount() decimal.Decimal { return p.amount }
func (p *Payment) Status() PaymentStatus   { return p.status }
func (p *Payment) PaidAt() time.Time       { return p.paidAt }

func (p *Payment) AssignID(id int64) { p.id = id }
