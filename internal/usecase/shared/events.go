package shared

import (
	"context"
	"encoding/json"
	"time"

	"commerce-server/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	TopicBalanceCharged  = "balance.charged"
	TopicBalanceDeducted = "balance.deducted"
	TopicCouponIssued    = "coupon.issued"
	TopicOrderCreated    = "order.created"
	TopicOrderCompleted  = "order.completed"
)

// Publisher emits domain events. Delivery is best effort; callers never
// depend on it for correctness.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	// PublishAsync sends in the background and only logs failures.
	PublishAsync(ctx context.Context, topic string, event Event)
}

type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEvent(eventType, key string, payload any, now time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, errs.Wrapf(err, "encode %s payload", eventType)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: now,
		Payload:    data,
	}, nil
}

func (e Event) Decode(target any) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errs.Wrapf(err, "decode %s payload", e.Type)
	}
	return nil
}

type BalanceChangedPayload struct {
	UserID  int64  `json:"userId"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

type CouponIssuedPayload struct {
	UserID    int64 `json:"userId"`
	CouponID  int64 `json:"couponId"`
	HistoryID int64 `json:"historyId"`
}

type OrderPayload struct {
	OrderID    int64   `json:"orderId"`
	UserID     int64   `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
	Amount     string  `json:"amount"`
}
