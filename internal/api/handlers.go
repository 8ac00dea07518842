package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/restaurant-pos/internal/api/middleware"
	"github.com/example/restaurant-pos/internal/apperr"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/cash"
	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/domain/table"
	"github.com/example/restaurant-pos/internal/shift"
)

// Handlers carries the engines behind the HTTP surface.
type Handlers struct {
	orders     *order.Service
	cashEngine *cash.Engine
	ledger     *cash.Ledger
	tables     table.Store
	menuItems  menu.Store
	hours      shift.Hours
}

func NewHandlers(orders *order.Service, cashEngine *cash.Engine, ledger *cash.Ledger,
	tables table.Store, menuItems menu.Store, hours shift.Hours) *Handlers {
	return &Handlers{
		orders:     orders,
		cashEngine: cashEngine,
		ledger:     ledger,
		tables:     tables,
		menuItems:  menuItems,
		hours:      hours,
	}
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req order.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Create(r.Context(), act, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	if status := r.URL.Query().Get("status"); status != "" {
		orders, err := h.orders.ListByStatus(r.Context(), order.Status(status))
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, orders)
		return
	}

	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := extractPathParam(r.URL.Path, "/orders/")

	var req order.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Update(r.Context(), act, id, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) AppendOrderItems(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := extractSegment(r.URL.Path, "/orders/", "/items")

	var req struct {
		Items []order.CreateItem `json:"items"`
		Bill  order.Bill         `json:"bill"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.AppendItems(r.Context(), act, id, req.Items, req.Bill)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	orderID, itemID := splitItemPath(r.URL.Path)

	var req struct {
		Status order.ItemStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.UpdateItemStatus(r.Context(), act, orderID, itemID, req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ServeAllReady(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := extractSegment(r.URL.Path, "/orders/", "/serve")

	o, err := h.orders.ServeAllReady(r.Context(), act, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) ReassignTable(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := extractSegment(r.URL.Path, "/orders/", "/table")

	var req struct {
		TableID string `json:"table_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.ReassignTable(r.Context(), act, id, req.TableID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Cash Handlers

func (h *Handlers) PreviewCut(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.URL.Query().Get("type") {
	case "", string(cash.CutCashier):
		cashierID := r.URL.Query().Get("cashier_id")
		if cashierID == "" {
			cashierID = act.ID
		}
		// Only admins may look at another cashier's drawer.
		if cashierID != act.ID && !act.Is(actor.RoleAdmin) {
			respondDomainError(w, apperr.Forbiddenf("role %s cannot preview another cashier", act.Role))
			return
		}
		p, err := h.cashEngine.PreviewCashier(r.Context(), cashierID, time.Now(), h.hours)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	case string(cash.CutDaily):
		var date *time.Time
		if d := r.URL.Query().Get("date"); d != "" {
			parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
			if err != nil {
				respondJSONError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = &parsed
		}
		p, err := h.cashEngine.PreviewDaily(r.Context(), date, time.Now(), h.hours)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, p)
	default:
		respondJSONError(w, "Unknown cut type", http.StatusBadRequest)
	}
}

func (h *Handlers) CommitCut(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req cash.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.cashEngine.Commit(r.Context(), act, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handlers) ListCuts(w http.ResponseWriter, r *http.Request) {
	cuts, err := h.cashEngine.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cuts)
}

func (h *Handlers) RecordMovement(w http.ResponseWriter, r *http.Request) {
	act, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type        cash.MovementType `json:"type"`
		Amount      float64           `json:"amount"`
		Description string            `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.ledger.Record(r.Context(), req.Type, req.Amount, req.Description, act.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) ListMovements(w http.ResponseWriter, r *http.Request) {
	var filter cash.ListFilter
	filter.UserID = r.URL.Query().Get("user_id")
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, time.Local)
		if err != nil {
			respondJSONError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		win := shift.DayWindow(parsed)
		filter.Range = &win
	}

	movements, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

// Table Handlers

func (h *Handlers) CreateTable(w http.ResponseWriter, r *http.Request) {
	var t table.Table
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = table.StatusAvailable
	}
	if err := h.tables.Create(r.Context(), &t); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tables)
}

// Menu Handlers

func (h *Handlers) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var m menu.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := h.menuItems.Create(r.Context(), &m); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menuItems.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/menu/")

	var m menu.MenuItem
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	m.ID = id
	if err := h.menuItems.Save(r.Context(), &m); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrForbidden):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, apperr.ErrNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrConflict):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperr.ErrInvalidArgument):
		respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// extractSegment pulls the ID from prefix<id>suffix paths.
func extractSegment(path, prefix, suffix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
}

// splitItemPath parses /orders/<orderID>/items/<itemID>.
func splitItemPath(path string) (orderID, itemID string) {
	rest := strings.TrimPrefix(path, "/orders/")
	parts := strings.SplitN(rest, "/items/", 2)
	orderID = parts[0]
	if len(parts) == 2 {
		itemID = parts[1]
	}
	return orderID, itemID
}
