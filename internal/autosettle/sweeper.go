// Package autosettle promotes stale ready items to served. Plates that sat
// on the pass for longer than the dwell are assumed delivered; the sweep is
// the one actor that transitions items without an explicit caller role.
package autosettle

import (
	"context"
	"log"
	"time"

	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/notification"
)

const (
	DefaultPeriod = 60 * time.Second
	DefaultDwell  = 5 * time.Minute
)

// Sweeper periodically settles items that have been ready longer than the
// dwell.
type Sweeper struct {
	orders   order.Store
	notifier notification.Publisher
	period   time.Duration
	dwell    time.Duration
}

func New(orders order.Store, notifier notification.Publisher, period, dwell time.Duration) *Sweeper {
	if period <= 0 {
		period = DefaultPeriod
	}
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Sweeper{orders: orders, notifier: notifier, period: period, dwell: dwell}
}

// Run loops until the context is cancelled. A failed sweep is logged and
// retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	log.Printf("[AutoSettle] Running every %s, dwell %s", s.period, s.dwell)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[AutoSettle] Stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx, time.Now())
		}
	}
}

// Sweep is one pass: every ready item whose ReadyAt is older than the dwell
// becomes served, the parent order's status is re-derived, and one
// order-update is emitted per modified order. Re-running over already-served
// items is a no-op, so concurrent manual transitions are tolerated (last
// write wins). A failure on one order never stops the rest of the pass.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	ready, err := s.orders.ListByStatus(ctx, order.StatusReady)
	if err != nil {
		log.Printf("[AutoSettle] Failed to list ready orders: %v", err)
		return
	}
	inProgress, err := s.orders.ListByStatus(ctx, order.StatusInProgress)
	if err != nil {
		log.Printf("[AutoSettle] Failed to list in-progress orders: %v", err)
		return
	}

	cutoff := now.Add(-s.dwell)
	for _, o := range append(ready, inProgress...) {
		if err := s.settleOrder(ctx, o, cutoff, now); err != nil {
			log.Printf("[AutoSettle] Failed to settle order %s: %v", o.ID, err)
		}
	}
}

func (s *Sweeper) settleOrder(ctx context.Context, o *order.Order, cutoff, now time.Time) error {
	settled := o.SettleStaleReady(cutoff, now)
	if settled == 0 {
		return nil
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}
	log.Printf("[AutoSettle] Settled %d item(s) on order %s", settled, o.ID)
	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notification.EventOrderUpdate, o.ID, o); err != nil {
			log.Printf("[AutoSettle] Failed to publish order-update for %s: %v", o.ID, err)
		}
	}
	return nil
}
