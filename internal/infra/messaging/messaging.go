// Package messaging carries domain events between commands and event handlers,
// over Kafka or an in-process bus.
package messaging

import (
	"context"

	"commerce-server/internal/usecase/shared"
)

// Subscriber is an event handler that declares the event types it consumes.
type Subscriber interface {
	Topics() []string
	Handle(ctx context.Context, event shared.Event) error
}
