package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/restaurant-pos/internal/apperr"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/domain/table"
	"github.com/example/restaurant-pos/internal/infrastructure/store/mocks"
	"github.com/example/restaurant-pos/internal/notification"
)

var (
	admin   = actor.Actor{ID: "u-admin", Name: "Root", Role: actor.RoleAdmin}
	waiter  = actor.Actor{ID: "u-waiter", Name: "Luis", Role: actor.RoleWaiter}
	kitchen = actor.Actor{ID: "u-kitchen", Name: "Chef", Role: actor.RoleKitchen}
	cashier = actor.Actor{ID: "u-cashier", Name: "Ana", Role: actor.RoleCashier}
)

type fixture struct {
	svc       *order.Service
	orders    *mocks.MockOrderStore
	tables    *mocks.MockTableStore
	menuStore *mocks.MockMenuStore
	publisher *mocks.MockPublisher
}

func newFixture() *fixture {
	orders := mocks.NewMockOrderStore()
	tables := mocks.NewMockTableStore()
	menuStore := mocks.NewMockMenuStore()
	publisher := mocks.NewMockPublisher()
	svc := order.NewService(orders, tables, menu.NewAdjuster(menuStore), publisher)
	return &fixture{svc: svc, orders: orders, tables: tables, menuStore: menuStore, publisher: publisher}
}

func (f *fixture) seedDish(id string, stock int) {
	_ = f.menuStore.Create(context.Background(), &menu.MenuItem{ID: id, Name: id, Stock: stock, Available: true})
}

func (f *fixture) seedTable(id string, number int) {
	_ = f.tables.Create(context.Background(), &table.Table{ID: id, Number: number, Status: table.StatusAvailable})
}

func twoItems() []order.CreateItem {
	return []order.CreateItem{
		{DishID: "dish-1", Name: "Tacos", UnitPrice: 50, Quantity: 2},
		{DishID: "dish-2", Name: "Agua", UnitPrice: 20, Quantity: 1},
	}
}

// ============================================
// Create
// ============================================

func TestCreate_MultiItemStartsPending(t *testing.T) {
	f := newFixture()
	f.seedDish("dish-1", 10)
	f.seedDish("dish-2", 10)

	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{
		CustomerName: "Mesa 4",
		Type:         order.TypeDineIn,
		Items:        twoItems(),
		Bill:         order.Bill{Subtotal: 120, Tax: 19.2, TotalWithTax: 139.2},
	})

	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.Equal(t, order.ItemPending, it.Status)
		assert.False(t, it.CreatedAt.IsZero())
		assert.Nil(t, it.StartedAt)
	}
	assert.Equal(t, 100.0, o.Items[0].Total)

	// stock decremented per item
	assert.ElementsMatch(t, []mocks.AdjustCall{
		{ID: "dish-1", Delta: -2},
		{ID: "dish-2", Delta: -1},
	}, f.menuStore.AdjustCalls)

	// new-order announced
	events := f.publisher.ByEvent(notification.EventNewOrder)
	require.Len(t, events, 1)
	assert.Equal(t, o.ID, events[0].Key)
}

func TestCreate_SingleItemFastPath(t *testing.T) {
	f := newFixture()

	o, err := f.svc.Create(context.Background(), cashier, order.CreateRequest{
		CustomerName: "Para llevar",
		Type:         order.TypeTakeout,
		Items:        []order.CreateItem{{Name: "Torta", UnitPrice: 45, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress, o.Status)
	assert.Equal(t, order.ItemPending, o.Items[0].Status)
}

func TestCreate_RoleGate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), kitchen, order.CreateRequest{
		Items: twoItems(),
	})

	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, f.orders.CreateCalls)
}

func TestCreate_NoItems(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{})

	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestCreate_UnresolvedDishIsNonFatal(t *testing.T) {
	f := newFixture()
	// dish-1/dish-2 never seeded: adjuster skips them

	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{
		CustomerName: "Mesa 1",
		Items:        twoItems(),
	})

	require.NoError(t, err)
	assert.NotNil(t, o)
	assert.Empty(t, f.menuStore.AdjustCalls)
}

func TestCreate_OccupiesTable(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 4)

	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{
		CustomerName: "Mesa 4",
		TableID:      "t1",
		Items:        twoItems(),
	})

	require.NoError(t, err)
	tbl, ok, _ := f.tables.Get(context.Background(), "t1")
	require.True(t, ok)
	assert.Equal(t, table.StatusOccupied, tbl.Status)
	assert.Equal(t, o.ID, tbl.CurrentOrderID)
}

func TestCreate_OccupiedTableConflict(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 4)
	_, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})

	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreate_PublishFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.publisher.Err = errors.New("broker down")

	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})

	require.NoError(t, err)
	assert.NotNil(t, o)
}

// ============================================
// AppendItems
// ============================================

func TestAppendItems_AdditiveBillAndDemotion(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{
		Items: twoItems(),
		Bill:  order.Bill{Subtotal: 120, Tax: 19.2, TotalWithTax: 139.2},
	})
	require.NoError(t, err)

	// bring the order to fully ready
	for _, it := range o.Items {
		_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, it.ID, order.ItemReady)
		require.NoError(t, err)
	}
	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusReady, got.Status)

	got, err = f.svc.AppendItems(context.Background(), waiter, o.ID,
		[]order.CreateItem{{Name: "Flan", UnitPrice: 30, Quantity: 1}},
		order.Bill{Subtotal: 30, Tax: 4.8, TotalWithTax: 34.8})

	require.NoError(t, err)
	// demoted immediately, before the new item moves at all
	assert.Equal(t, order.StatusInProgress, got.Status)
	assert.Len(t, got.Items, 3)
	assert.Equal(t, order.ItemPending, got.Items[2].Status)
	assert.Equal(t, 150.0, got.Bill.Subtotal)
	assert.Equal(t, 24.0, got.Bill.Tax)
	assert.Equal(t, 174.0, got.Bill.TotalWithTax)
}

func TestAppendItems_WaiterOnly(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	for _, act := range []actor.Actor{kitchen, cashier, admin} {
		_, err := f.svc.AppendItems(context.Background(), act, o.ID, twoItems(), order.Bill{})
		assert.ErrorIs(t, err, apperr.ErrForbidden, "role %s", act.Role)
	}
}

func TestAppendItems_TerminalConflict(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	completed := order.StatusCompleted
	_, err = f.svc.Update(context.Background(), cashier, o.ID, order.UpdateRequest{Status: &completed})
	require.NoError(t, err)

	_, err = f.svc.AppendItems(context.Background(), waiter, o.ID, twoItems(), order.Bill{})

	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAppendItems_UnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AppendItems(context.Background(), waiter, "missing", twoItems(), order.Bill{})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAppendItems_NonPositiveQuantity(t *testing.T) {
	f := newFixture()
	f.seedDish("dish-1", 10)
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	for _, qty := range []int{0, -3} {
		_, err = f.svc.AppendItems(context.Background(), waiter, o.ID,
			[]order.CreateItem{{DishID: "dish-1", Name: "Tacos", UnitPrice: 50, Quantity: qty}},
			order.Bill{})
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "quantity %d", qty)
	}

	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

// ============================================
// UpdateItemStatus
// ============================================

func TestUpdateItemStatus_KitchenDrivesLifecycle(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	itemID := o.Items[0].ID

	got, err := f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemInProgress)
	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress, got.Status)
	require.NotNil(t, got.Items[0].StartedAt)

	got, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)
	require.NotNil(t, got.Items[0].ReadyAt)
	assert.False(t, got.Items[0].ReadyAt.Before(*got.Items[0].StartedAt))
	// the second item is still pending, so the order is not ready yet
	assert.Equal(t, order.StatusInProgress, got.Status)
}

func TestUpdateItemStatus_TimestampsWriteOnce(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	itemID := o.Items[0].ID

	got, err := f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)
	readyAt := *got.Items[0].ReadyAt

	// regressing and re-promoting must not move the first-entry timestamp
	_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemInProgress)
	require.NoError(t, err)
	got, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)

	assert.Equal(t, readyAt, *got.Items[0].ReadyAt)
}

func TestUpdateItemStatus_WaiterGate(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	itemID := o.Items[0].ID

	_, err = f.svc.UpdateItemStatus(context.Background(), waiter, o.ID, itemID, order.ItemReady)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)

	got, err := f.svc.UpdateItemStatus(context.Background(), waiter, o.ID, itemID, order.ItemServed)
	require.NoError(t, err)
	assert.Equal(t, order.ItemServed, got.Items[0].Status)
}

func TestUpdateItemStatus_DeliveryForbidden(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	delivery := actor.Actor{ID: "u-d", Role: actor.RoleDelivery}
	_, err = f.svc.UpdateItemStatus(context.Background(), delivery, o.ID, o.Items[0].ID, order.ItemServed)

	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateItemStatus_UnknownItem(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, "missing", order.ItemReady)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateItemStatus_TerminalConflict(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	completed := order.StatusCompleted
	closed, err := f.svc.Update(context.Background(), cashier, o.ID, order.UpdateRequest{Status: &completed})
	require.NoError(t, err)
	paidAt := closed.UpdatedAt

	_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, o.Items[0].ID, order.ItemReady)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// the settlement instant keys cut windows and must not move afterwards
	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, got.Status)
	assert.Equal(t, paidAt, got.UpdatedAt)
}

func TestUpdateItemStatus_NoOpDoesNotSave(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	itemID := o.Items[0].ID

	got, err := f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)
	updatedAt := got.UpdatedAt
	saves := len(f.orders.SaveCalls)

	got, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)

	require.NoError(t, err)
	assert.Equal(t, updatedAt, got.UpdatedAt)
	assert.Len(t, f.orders.SaveCalls, saves)
}

// Single-item scenario: InProgress on create, Ready when its item is ready,
// still Ready once served, Completed only by the cashier.
func TestSingleItemLifecycle(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{
		Items: []order.CreateItem{{Name: "Torta", UnitPrice: 45, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusInProgress, o.Status)
	itemID := o.Items[0].ID

	got, err := f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, itemID, order.ItemReady)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReady, got.Status)

	got, err = f.svc.UpdateItemStatus(context.Background(), waiter, o.ID, itemID, order.ItemServed)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReady, got.Status, "all items finished keeps the order ready until payment")

	completed := order.StatusCompleted
	got, err = f.svc.Update(context.Background(), cashier, o.ID, order.UpdateRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, got.Status)
	assert.Equal(t, cashier.ID, got.CashierID)
}

// ============================================
// ServeAllReady
// ============================================

func TestServeAllReady(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	for _, it := range o.Items {
		_, err = f.svc.UpdateItemStatus(context.Background(), kitchen, o.ID, it.ID, order.ItemReady)
		require.NoError(t, err)
	}
	before := len(f.publisher.ByEvent(notification.EventOrderUpdate))

	got, err := f.svc.ServeAllReady(context.Background(), waiter, o.ID)

	require.NoError(t, err)
	for _, it := range got.Items {
		assert.Equal(t, order.ItemServed, it.Status)
		assert.NotNil(t, it.ServedAt)
	}
	assert.Equal(t, order.StatusReady, got.Status)
	assert.Len(t, f.publisher.ByEvent(notification.EventOrderUpdate), before+1)
}

func TestServeAllReady_NothingReadyIsSilent(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	saves := len(f.orders.SaveCalls)
	events := len(f.publisher.Events)

	_, err = f.svc.ServeAllReady(context.Background(), waiter, o.ID)

	require.NoError(t, err)
	assert.Len(t, f.orders.SaveCalls, saves, "no save on a no-op pass")
	assert.Len(t, f.publisher.Events, events, "no notification on a no-op pass")
}

func TestServeAllReady_RoleGate(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	_, err = f.svc.ServeAllReady(context.Background(), kitchen, o.ID)

	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

// ============================================
// Update (terminal transitions)
// ============================================

func TestUpdate_CompleteReleasesTable(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 4)
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})
	require.NoError(t, err)

	completed := order.StatusCompleted
	method := "Efectivo"
	got, err := f.svc.Update(context.Background(), cashier, o.ID, order.UpdateRequest{
		Status:        &completed,
		PaymentMethod: &method,
	})

	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, got.Status)
	assert.Equal(t, cashier.ID, got.CashierID)
	assert.Equal(t, "Efectivo", got.PaymentMethod)

	tbl, ok, _ := f.tables.Get(context.Background(), "t1")
	require.True(t, ok)
	assert.Equal(t, table.StatusAvailable, tbl.Status)
	assert.Empty(t, tbl.CurrentOrderID)

	assert.NotEmpty(t, f.publisher.ByEvent(notification.EventTableUpdate))
	assert.NotEmpty(t, f.publisher.ByEvent(notification.EventOrderUpdate))
}

func TestUpdate_CompleteWaiterForbidden(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	completed := order.StatusCompleted
	_, err = f.svc.Update(context.Background(), waiter, o.ID, order.UpdateRequest{Status: &completed})

	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdate_CancelRecordsWhoAndWhy(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)

	cancelled := order.StatusCancelled
	reason := "customer left"
	got, err := f.svc.Update(context.Background(), admin, o.ID, order.UpdateRequest{
		Status:       &cancelled,
		CancelReason: &reason,
	})

	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.Equal(t, admin.ID, got.CancelledBy)
	assert.Equal(t, "customer left", got.CancelReason)
}

func TestUpdate_ExplicitDeliveryStatus(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Type: order.TypeDelivery, Items: twoItems()})
	require.NoError(t, err)

	out := order.StatusOutForDelivery
	delivery := actor.Actor{ID: "u-d", Role: actor.RoleDelivery}
	got, err := f.svc.Update(context.Background(), delivery, o.ID, order.UpdateRequest{Status: &out})
	require.NoError(t, err)
	assert.Equal(t, order.StatusOutForDelivery, got.Status)

	_, err = f.svc.Update(context.Background(), waiter, o.ID, order.UpdateRequest{Status: &out})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdate_TerminalIsFrozen(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{Items: twoItems()})
	require.NoError(t, err)
	cancelled := order.StatusCancelled
	_, err = f.svc.Update(context.Background(), admin, o.ID, order.UpdateRequest{Status: &cancelled})
	require.NoError(t, err)

	completed := order.StatusCompleted
	_, err = f.svc.Update(context.Background(), cashier, o.ID, order.UpdateRequest{Status: &completed})

	assert.ErrorIs(t, err, apperr.ErrConflict)
}

// ============================================
// ReassignTable
// ============================================

func TestReassignTable(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 1)
	f.seedTable("t2", 2)
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})
	require.NoError(t, err)

	got, err := f.svc.ReassignTable(context.Background(), waiter, o.ID, "t2")

	require.NoError(t, err)
	assert.Equal(t, "t2", got.TableID)

	oldTbl, _, _ := f.tables.Get(context.Background(), "t1")
	newTbl, _, _ := f.tables.Get(context.Background(), "t2")
	assert.Equal(t, table.StatusAvailable, oldTbl.Status)
	assert.Equal(t, table.StatusOccupied, newTbl.Status)
	assert.Equal(t, o.ID, newTbl.CurrentOrderID)
}

func TestReassignTable_OccupiedDestination(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 1)
	f.seedTable("t2", 2)
	_, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t2", Items: twoItems()})
	require.NoError(t, err)
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})
	require.NoError(t, err)

	_, err = f.svc.ReassignTable(context.Background(), waiter, o.ID, "t2")

	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReassignTable_RoleGate(t *testing.T) {
	f := newFixture()
	f.seedTable("t1", 1)
	f.seedTable("t2", 2)
	o, err := f.svc.Create(context.Background(), waiter, order.CreateRequest{TableID: "t1", Items: twoItems()})
	require.NoError(t, err)

	for _, act := range []actor.Actor{kitchen, cashier, {ID: "u-d", Role: actor.RoleDelivery}} {
		_, err = f.svc.ReassignTable(context.Background(), act, o.ID, "t2")
		assert.ErrorIs(t, err, apperr.ErrForbidden, string(act.Role))
	}

	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.TableID)
}
