package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/restaurant-pos/internal/api"
	"github.com/example/restaurant-pos/internal/api/middleware"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/cash"
	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/infrastructure/store/mocks"
	"github.com/example/restaurant-pos/internal/notification"
	"github.com/example/restaurant-pos/internal/shift"
)

func newTestHandlers() *api.Handlers {
	orders := mocks.NewMockOrderStore()
	tables := mocks.NewMockTableStore()
	menuStore := mocks.NewMockMenuStore()
	movements := mocks.NewMockMovementStore()
	cuts := mocks.NewMockCutStore()

	svc := order.NewService(orders, tables, menu.NewAdjuster(menuStore), notification.Nop{})
	engine := cash.NewEngine(orders, movements, cuts)
	ledger := cash.NewLedger(movements)
	hours := shift.Hours{Open: shift.DefaultOpen, Close: shift.DefaultClose}

	return api.NewHandlers(svc, engine, ledger, tables, menuStore, hours)
}

func previewAs(t *testing.T, h *api.Handlers, act actor.Actor, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/cash/cuts/preview"+query, nil)
	req = req.WithContext(middleware.WithActor(req.Context(), act))
	rec := httptest.NewRecorder()
	h.PreviewCut(rec, req)
	return rec
}

func TestPreviewCut_OwnDrawer(t *testing.T) {
	h := newTestHandlers()
	ana := actor.Actor{ID: "u-ana", Role: actor.RoleCashier}

	rec := previewAs(t, h, ana, "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreviewCut_CrossCashierNeedsAdmin(t *testing.T) {
	h := newTestHandlers()
	ana := actor.Actor{ID: "u-ana", Role: actor.RoleCashier}
	root := actor.Actor{ID: "u-root", Role: actor.RoleAdmin}

	rec := previewAs(t, h, ana, "?cashier_id=u-beto")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = previewAs(t, h, root, "?cashier_id=u-beto")
	assert.Equal(t, http.StatusOK, rec.Code)
}
