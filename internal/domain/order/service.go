package order

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/restaurant-pos/internal/apperr"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/table"
	"github.com/example/restaurant-pos/internal/notification"
)

// Store is the persistence contract for orders. Save is a whole-record
// write with last-writer-wins semantics.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, bool, error)
	Save(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]*Order, error)
	ListByStatus(ctx context.Context, s Status) ([]*Order, error)
	// ListCompletedBetween returns completed orders whose last update falls
	// inside [start, end], for cash reconciliation.
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]*Order, error)
}

// Inventory applies signed stock deltas. Failures never abort an order
// mutation.
type Inventory interface {
	Adjust(ctx context.Context, dishID string, delta int) error
}

// Service owns the order and item lifecycle: creation, item appends,
// role-gated status transitions, derived order status, table occupancy and
// terminal payment/cancellation operations.
type Service struct {
	orders    Store
	tables    table.Store
	inventory Inventory
	notifier  notification.Publisher
}

func NewService(orders Store, tables table.Store, inventory Inventory, notifier notification.Publisher) *Service {
	return &Service{orders: orders, tables: tables, inventory: inventory, notifier: notifier}
}

type CreateItem struct {
	DishID    string  `json:"dish_id,omitempty"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type CreateRequest struct {
	CustomerName  string       `json:"customer_name"`
	Type          string       `json:"type"`
	TableID       string       `json:"table_id,omitempty"`
	Items         []CreateItem `json:"items"`
	Bill          Bill         `json:"bill"`
	PaymentMethod string       `json:"payment_method,omitempty"`
}

// Create opens a new order. Every item starts pending; an order with exactly
// one item starts in progress directly since the kitchen can pick it up
// without sequencing. Stock decrement and the new-order notification are
// best effort.
func (s *Service) Create(ctx context.Context, act actor.Actor, req CreateRequest) (*Order, error) {
	if !act.Is(actor.RoleWaiter, actor.RoleCashier, actor.RoleAdmin) {
		return nil, apperr.Forbiddenf("role %s cannot create orders", act.Role)
	}
	if len(req.Items) == 0 {
		return nil, apperr.InvalidArgumentf("an order needs at least one item")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperr.InvalidArgumentf("invalid quantity for item %q", it.Name)
		}
	}

	now := time.Now()
	o := &Order{
		ID:            uuid.New().String(),
		CustomerName:  req.CustomerName,
		Type:          req.Type,
		Status:        StatusPending,
		Items:         buildItems(req.Items, now),
		Bill:          req.Bill,
		TableID:       req.TableID,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(o.Items) == 1 {
		o.Status = StatusInProgress
	}

	if req.TableID != "" {
		tbl, ok, err := s.tables.Get(ctx, req.TableID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFoundf("table %s", req.TableID)
		}
		if !tbl.Available() {
			return nil, apperr.Conflictf("table %d is not available", tbl.Number)
		}
		tbl.Occupy(o.ID)
		if err := s.tables.Save(ctx, tbl); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		s.adjustStock(ctx, it.DishID, -it.Quantity)
	}
	s.notify(ctx, notification.EventNewOrder, o.ID, o)
	return o, nil
}

// AppendItems adds new pending items to a live order. The bill delta is
// additive. An order that was fully ready drops back to in progress: the new
// items are unfinished work.
func (s *Service) AppendItems(ctx context.Context, act actor.Actor, orderID string, items []CreateItem, billDelta Bill) (*Order, error) {
	if !act.Is(actor.RoleWaiter) {
		return nil, apperr.Forbiddenf("role %s cannot append items", act.Role)
	}
	if len(items) == 0 {
		return nil, apperr.InvalidArgumentf("no items to append")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apperr.InvalidArgumentf("invalid quantity for item %q", it.Name)
		}
	}

	o, ok, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", orderID)
	}
	if o.Status.Terminal() {
		return nil, apperr.Conflictf("order %s is %s", orderID, o.Status)
	}

	now := time.Now()
	added := buildItems(items, now)
	o.Items = append(o.Items, added...)
	o.Bill.add(billDelta)
	if o.Status == StatusReady {
		o.Status = StatusInProgress
	}
	o.UpdatedAt = now

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	for _, it := range added {
		s.adjustStock(ctx, it.DishID, -it.Quantity)
	}
	s.notify(ctx, notification.EventOrderUpdate, o.ID, o)
	return o, nil
}

// UpdateItemStatus moves a single item through its lifecycle. Kitchen and
// admin may set any status; a waiter may only mark an item served. The order
// status is re-derived afterwards, never set by the caller.
func (s *Service) UpdateItemStatus(ctx context.Context, act actor.Actor, orderID, itemID string, status ItemStatus) (*Order, error) {
	if !status.Valid() {
		return nil, apperr.InvalidArgumentf("unknown item status %q", status)
	}
	switch {
	case act.Is(actor.RoleKitchen, actor.RoleAdmin):
	case act.Is(actor.RoleWaiter) && status == ItemServed:
	default:
		return nil, apperr.Forbiddenf("role %s cannot set item status %s", act.Role, status)
	}

	o, ok, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", orderID)
	}
	if o.Status.Terminal() {
		return nil, apperr.Conflictf("order %s is %s", orderID, o.Status)
	}
	it := o.item(itemID)
	if it == nil {
		return nil, apperr.NotFoundf("item %s in order %s", itemID, orderID)
	}

	now := time.Now()
	if !it.setStatus(status, now) {
		return o, nil
	}
	o.Status = DeriveStatus(o.Items)
	o.UpdatedAt = now

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, notification.EventOrderUpdate, o.ID, o)
	return o, nil
}

// ServeAllReady marks every ready item served in one pass.
func (s *Service) ServeAllReady(ctx context.Context, act actor.Actor, orderID string) (*Order, error) {
	if !act.Is(actor.RoleWaiter, actor.RoleAdmin) {
		return nil, apperr.Forbiddenf("role %s cannot serve items", act.Role)
	}

	o, ok, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", orderID)
	}

	now := time.Now()
	changed := false
	for idx := range o.Items {
		if o.Items[idx].Status == ItemReady {
			o.Items[idx].setStatus(ItemServed, now)
			changed = true
		}
	}
	if !changed {
		return o, nil
	}
	if !o.Status.Terminal() {
		o.Status = DeriveStatus(o.Items)
	}
	o.UpdatedAt = now

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, notification.EventOrderUpdate, o.ID, o)
	return o, nil
}

type UpdateRequest struct {
	Status         *Status  `json:"status,omitempty"`
	PaymentMethod  *string  `json:"payment_method,omitempty"`
	PaymentDetails *string  `json:"payment_details,omitempty"`
	CancelReason   *string  `json:"cancel_reason,omitempty"`
	Discount       *float64 `json:"discount,omitempty"`
	Tip            *float64 `json:"tip,omitempty"`
}

// Update applies an explicit order-level transition, used for terminal
// states and payment metadata. Completing records the cashier; cancelling
// records who cancelled and why. Either terminal transition releases the
// order's table.
func (s *Service) Update(ctx context.Context, act actor.Actor, orderID string, req UpdateRequest) (*Order, error) {
	o, ok, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", orderID)
	}

	now := time.Now()
	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, apperr.InvalidArgumentf("unknown order status %q", next)
		}
		if o.Status.Terminal() {
			return nil, apperr.Conflictf("order %s is already %s", orderID, o.Status)
		}
		switch next {
		case StatusCompleted:
			if !act.Is(actor.RoleCashier, actor.RoleAdmin) {
				return nil, apperr.Forbiddenf("role %s cannot complete orders", act.Role)
			}
			o.CashierID = act.ID
		case StatusCancelled:
			if !act.Is(actor.RoleAdmin, actor.RoleCashier) {
				return nil, apperr.Forbiddenf("role %s cannot cancel orders", act.Role)
			}
			o.CancelledBy = act.ID
			if req.CancelReason != nil {
				o.CancelReason = *req.CancelReason
			}
		default:
			if !act.Is(actor.RoleAdmin, actor.RoleKitchen, actor.RoleDelivery) {
				return nil, apperr.Forbiddenf("role %s cannot set order status %s", act.Role, next)
			}
		}
		o.Status = next
	}

	if req.PaymentMethod != nil {
		o.PaymentMethod = *req.PaymentMethod
	}
	if req.PaymentDetails != nil {
		o.PaymentDetails = *req.PaymentDetails
	}
	if req.Discount != nil {
		o.Bill.Discount = *req.Discount
	}
	if req.Tip != nil {
		o.Bill.Tip = *req.Tip
	}
	o.UpdatedAt = now

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if o.Status.Terminal() && o.TableID != "" {
		s.releaseTable(ctx, o.TableID)
	}
	s.notify(ctx, notification.EventOrderUpdate, o.ID, o)
	return o, nil
}

// ReassignTable moves a live order to a different table. The old table is
// freed, the new one occupied, then both changes are announced.
func (s *Service) ReassignTable(ctx context.Context, act actor.Actor, orderID, newTableID string) (*Order, error) {
	if !act.Is(actor.RoleWaiter, actor.RoleAdmin) {
		return nil, apperr.Forbiddenf("role %s cannot reassign tables", act.Role)
	}

	o, ok, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", orderID)
	}
	if o.Status.Terminal() {
		return nil, apperr.Conflictf("order %s is %s", orderID, o.Status)
	}

	dest, ok, err := s.tables.Get(ctx, newTableID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("table %s", newTableID)
	}
	if !dest.Available() {
		return nil, apperr.Conflictf("table %d is not available", dest.Number)
	}

	oldTableID := o.TableID
	dest.Occupy(o.ID)
	if err := s.tables.Save(ctx, dest); err != nil {
		return nil, err
	}
	o.TableID = newTableID
	o.UpdatedAt = time.Now()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	if oldTableID != "" && oldTableID != newTableID {
		s.releaseTable(ctx, oldTableID)
	}
	s.notify(ctx, notification.EventTableUpdate, newTableID, dest)
	s.notify(ctx, notification.EventOrderUpdate, o.ID, o)
	return o, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, ok, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("order %s", id)
	}
	return o, nil
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]*Order, error) {
	return s.orders.List(ctx)
}

// ListByStatus returns orders currently in the given status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

func buildItems(items []CreateItem, now time.Time) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{
			ID:        uuid.New().String(),
			DishID:    it.DishID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Total:     it.UnitPrice * float64(it.Quantity),
			Status:    ItemPending,
			CreatedAt: now,
		})
	}
	return out
}

func (s *Service) adjustStock(ctx context.Context, dishID string, delta int) {
	if s.inventory == nil || dishID == "" {
		return
	}
	if err := s.inventory.Adjust(ctx, dishID, delta); err != nil {
		log.Printf("[OrderEngine] Stock adjust failed for dish %s: %v", dishID, err)
	}
}

func (s *Service) releaseTable(ctx context.Context, tableID string) {
	tbl, ok, err := s.tables.Get(ctx, tableID)
	if err != nil || !ok {
		log.Printf("[OrderEngine] Could not load table %s for release: %v", tableID, err)
		return
	}
	tbl.Release()
	if err := s.tables.Save(ctx, tbl); err != nil {
		log.Printf("[OrderEngine] Could not release table %s: %v", tableID, err)
		return
	}
	s.notify(ctx, notification.EventTableUpdate, tableID, tbl)
}

func (s *Service) notify(ctx context.Context, event, key string, payload any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, key, payload); err != nil {
		log.Printf("[OrderEngine] Failed to publish %s: %v", event, err)
	}
}
