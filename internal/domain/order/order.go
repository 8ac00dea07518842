package order

import "time"

// Status is the order-level status. Pending, InProgress and Ready are
// derived from the item statuses; Completed and Cancelled are terminal and
// set only through Update. OutForDelivery and Delivered are explicit
// statuses for delivery orders.
type Status string

const (
	StatusPending        Status = "pending"
	StatusInProgress     Status = "in_progress"
	StatusReady          Status = "ready"
	StatusCompleted      Status = "completed"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Terminal reports whether the status freezes the order. Terminal orders are
// kept for audit and never mutated or re-derived.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusReady, StatusCompleted,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ItemStatus is the kitchen-side lifecycle of a single line item.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in_progress"
	ItemReady      ItemStatus = "ready"
	ItemServed     ItemStatus = "served"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemInProgress, ItemReady, ItemServed:
		return true
	}
	return false
}

// Order types.
const (
	TypeDineIn   = "dine_in"
	TypeTakeout  = "takeout"
	TypeDelivery = "delivery"
)

// Item is a line item owned by its order. StartedAt, ReadyAt and ServedAt
// are set on the first transition into the matching status and never change
// afterwards.
type Item struct {
	ID        string     `json:"id"`
	DishID    string     `json:"dish_id,omitempty"`
	Name      string     `json:"name"`
	UnitPrice float64    `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	Total     float64    `json:"total"`
	Status    ItemStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	ReadyAt   *time.Time `json:"ready_at,omitempty"`
	ServedAt  *time.Time `json:"served_at,omitempty"`
}

// setStatus moves the item to the given status, stamping the first entry
// into each state. Returns true when anything actually changed, so callers
// can skip saves and notifications on no-op transitions.
func (i *Item) setStatus(s ItemStatus, now time.Time) bool {
	changed := i.Status != s
	i.Status = s
	switch s {
	case ItemInProgress:
		if i.StartedAt == nil {
			t := now
			i.StartedAt = &t
			changed = true
		}
	case ItemReady:
		if i.ReadyAt == nil {
			t := now
			i.ReadyAt = &t
			changed = true
		}
	case ItemServed:
		if i.ServedAt == nil {
			t := now
			i.ServedAt = &t
			changed = true
		}
	}
	return changed
}

// Bill holds the money totals of an order.
type Bill struct {
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	TotalWithTax float64 `json:"total_with_tax"`
	Tip          float64 `json:"tip"`
	Discount     float64 `json:"discount"`
}

// add merges a bill delta into the totals. Appending items never replaces
// what was already billed.
func (b *Bill) add(d Bill) {
	b.Subtotal += d.Subtotal
	b.Tax += d.Tax
	b.TotalWithTax += d.TotalWithTax
	b.Tip += d.Tip
	b.Discount += d.Discount
}

// Order is the aggregate root. Item order is insertion order, which the
// kitchen treats as priority.
type Order struct {
	ID             string    `json:"id"`
	CustomerName   string    `json:"customer_name"`
	Type           string    `json:"type"`
	Status         Status    `json:"status"`
	Items          []Item    `json:"items"`
	Bill           Bill      `json:"bill"`
	TableID        string    `json:"table_id,omitempty"`
	CashierID      string    `json:"cashier_id,omitempty"`
	CancelledBy    string    `json:"cancelled_by,omitempty"`
	CancelReason   string    `json:"cancel_reason,omitempty"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	PaymentDetails string    `json:"payment_details,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (o *Order) item(id string) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == id {
			return &o.Items[idx]
		}
	}
	return nil
}

// SettleStaleReady serves every item that has been ready since before
// cutoff and re-derives the order status. Returns how many items changed;
// zero means nothing to save or announce. Already-served items never match,
// which makes repeated sweeps no-ops. Terminal orders are untouched.
func (o *Order) SettleStaleReady(cutoff, now time.Time) int {
	if o.Status.Terminal() {
		return 0
	}
	n := 0
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status == ItemReady && it.ReadyAt != nil && it.ReadyAt.Before(cutoff) {
			it.setStatus(ItemServed, now)
			n++
		}
	}
	if n > 0 {
		o.Status = DeriveStatus(o.Items)
		o.UpdatedAt = now
	}
	return n
}

// DeriveStatus computes the order status from the item statuses. It never
// yields a terminal status; Completed and Cancelled come only from explicit
// payment or cancellation.
func DeriveStatus(items []Item) Status {
	var total, ready, served, inProgress int
	for _, it := range items {
		total++
		switch it.Status {
		case ItemReady:
			ready++
		case ItemServed:
			served++
		case ItemInProgress:
			inProgress++
		}
	}
	switch {
	case total > 0 && ready+served == total:
		return StatusReady
	case ready+served > 0 || inProgress > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}
