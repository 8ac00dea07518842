// Package notification is the fire-and-forget fan-out for state changes.
// The engines publish after the durable save; a publish failure is logged by
// the caller and never fails the primary operation.
package notification

import (
	"context"
	"time"
)

// Event names pushed to connected clients.
const (
	EventNewOrder    = "new-order"
	EventOrderUpdate = "order-update"
	EventTableUpdate = "table-update"
)

// Envelope is the wire shape of one notification.
type Envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher broadcasts a state-change event. Key groups related events for
// ordered delivery (entity id).
type Publisher interface {
	Publish(ctx context.Context, event, key string, payload any) error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
