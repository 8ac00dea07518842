// Package display consumes POS notification events and renders them as
// lines for the kitchen and floor screens.
package display

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/domain/table"
	"github.com/example/restaurant-pos/internal/notification"
)

// Handler consumes POS events and renders them as display lines. Rendering
// failures are logged and skipped so a malformed message never wedges the
// consumer.
type Handler struct {
	display Display
}

// Display receives rendered notification lines. The default implementation
// writes to the process log; a venue can plug a screen or ticket printer in.
type Display interface {
	Show(line string)
}

// LogDisplay writes each line to the standard logger.
type LogDisplay struct{}

func (LogDisplay) Show(line string) {
	log.Printf("[Display] %s", line)
}

func NewHandler(display Display) *Handler {
	if display == nil {
		display = LogDisplay{}
	}
	return &Handler{display: display}
}

// HandleMessage processes one Kafka message. The key carries the subject ID
// and the value a notification.Envelope.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var env notification.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal envelope: %v", err)
		return err
	}

	switch env.Event {
	case notification.EventNewOrder, notification.EventOrderUpdate:
		return h.handleOrder(env)
	case notification.EventTableUpdate:
		return h.handleTable(env)
	default:
		log.Printf("[Notifier] Ignoring unknown event %q", env.Event)
		return nil
	}
}

func (h *Handler) handleOrder(env notification.Envelope) error {
	var o order.Order
	if err := remarshal(env.Payload, &o); err != nil {
		log.Printf("[Notifier] Failed to decode order payload: %v", err)
		return err
	}

	switch env.Event {
	case notification.EventNewOrder:
		h.display.Show(fmt.Sprintf("NEW %s order %s for %s: %d item(s), $%.2f",
			o.Type, shortID(o.ID), o.CustomerName, len(o.Items), o.Bill.TotalWithTax))
	case notification.EventOrderUpdate:
		line := fmt.Sprintf("Order %s is now %s", shortID(o.ID), o.Status)
		if o.Status == order.StatusCancelled && o.CancelReason != "" {
			line = fmt.Sprintf("%s (%s)", line, o.CancelReason)
		}
		if o.Status == order.StatusCompleted && o.PaymentMethod != "" {
			line = fmt.Sprintf("%s, paid by %s", line, o.PaymentMethod)
		}
		h.display.Show(line)
	}
	return nil
}

func (h *Handler) handleTable(env notification.Envelope) error {
	var t table.Table
	if err := remarshal(env.Payload, &t); err != nil {
		log.Printf("[Notifier] Failed to decode table payload: %v", err)
		return err
	}
	h.display.Show(fmt.Sprintf("Table %d is now %s", t.Number, t.Status))
	return nil
}

// remarshal rebinds a decoded any payload onto a concrete type.
func remarshal(payload any, dst any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
