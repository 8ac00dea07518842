package cash

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/restaurant-pos/internal/apperr"
	"github.com/example/restaurant-pos/internal/domain/actor"
	"github.com/example/restaurant-pos/internal/domain/order"
	"github.com/example/restaurant-pos/internal/shift"
)

// OrderSource is the engine's read access to settled orders. The window is
// keyed by the order's last-update instant, which stands in for payment
// time.
type OrderSource interface {
	ListCompletedBetween(ctx context.Context, start, end time.Time) ([]*order.Order, error)
}

// Engine computes cut previews over a business-day window and commits
// immutable cut snapshots.
type Engine struct {
	orders    OrderSource
	movements MovementStore
	cuts      CutStore
}

func NewEngine(orders OrderSource, movements MovementStore, cuts CutStore) *Engine {
	return &Engine{orders: orders, movements: movements, cuts: cuts}
}

// Preview is what a cashier sees before confirming a cut: the window, the
// metrics, and the records they summarize. Nothing is persisted until
// Commit.
type Preview struct {
	Type      CutType         `json:"type"`
	CashierID string          `json:"cashier_id,omitempty"`
	Range     shift.Window    `json:"range"`
	Metrics   Metrics         `json:"metrics"`
	Orders    []*order.Order  `json:"orders"`
	Movements []*Movement     `json:"movements"`
}

// PreviewCashier builds a cashier-scoped preview. The window opens at that
// cashier's previous cut, or at the start of the current business day for
// their first cut, and closes now. Movements are restricted to the cashier.
func (e *Engine) PreviewCashier(ctx context.Context, cashierID string, now time.Time, hours shift.Hours) (*Preview, error) {
	if cashierID == "" {
		return nil, apperr.InvalidArgumentf("cashier id is required")
	}

	start := shift.CurrentWindow(now, hours).Start
	if last, ok, err := e.cuts.LastCashierCut(ctx, cashierID); err != nil {
		return nil, err
	} else if ok {
		start = last.CutDate
	}
	w := shift.Window{Start: start, End: now}

	return e.buildPreview(ctx, CutCashier, cashierID, w)
}

// PreviewDaily builds a whole-shift preview: for an explicit date, that
// date's shift; otherwise the current logical business day.
func (e *Engine) PreviewDaily(ctx context.Context, date *time.Time, now time.Time, hours shift.Hours) (*Preview, error) {
	w := shift.CurrentWindow(now, hours)
	if date != nil {
		w = shift.DateWindow(*date, hours)
	}
	return e.buildPreview(ctx, CutDaily, "", w)
}

func (e *Engine) buildPreview(ctx context.Context, typ CutType, cashierID string, w shift.Window) (*Preview, error) {
	orders, err := e.orders.ListCompletedBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	movements, err := e.movements.ListBetween(ctx, w.Start, w.End, cashierID)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Type:      typ,
		CashierID: cashierID,
		Range:     w,
		Metrics:   ComputeMetrics(orders, movements),
		Orders:    orders,
		Movements: movements,
	}, nil
}

// CommitRequest carries the preview the caller confirmed plus the counted
// drawer amount. The caller is expected to have fetched the preview
// immediately before committing; the narrow race between preview and commit
// is accepted, cuts being manual and human-gated.
type CommitRequest struct {
	Type              CutType      `json:"type"`
	CashierID         string       `json:"cashier_id,omitempty"`
	Range             shift.Window `json:"range"`
	Metrics           Metrics      `json:"metrics"`
	DeclaredTotalCash float64      `json:"declared_total_cash"`
	OrderIDs          []string     `json:"order_ids"`
	MovementIDs       []string     `json:"movement_ids"`
}

// Commit persists the immutable cut snapshot with the declared-vs-expected
// difference.
func (e *Engine) Commit(ctx context.Context, act actor.Actor, req CommitRequest) (*Cut, error) {
	if !act.Is(actor.RoleCashier, actor.RoleAdmin) {
		return nil, apperr.Forbiddenf("role %s cannot create cash cuts", act.Role)
	}
	if req.Type != CutCashier && req.Type != CutDaily {
		return nil, apperr.InvalidArgumentf("unknown cut type %q", req.Type)
	}
	if req.Type == CutCashier && req.CashierID == "" {
		return nil, apperr.InvalidArgumentf("cashier cut requires a cashier id")
	}
	if req.Type == CutDaily && req.CashierID != "" {
		return nil, apperr.InvalidArgumentf("daily cut cannot carry a cashier id")
	}

	m := req.Metrics
	m.DeclaredTotalCash = req.DeclaredTotalCash
	m.Difference = req.DeclaredTotalCash - m.CalculatedTotalCash

	c := &Cut{
		ID:          uuid.New().String(),
		Type:        req.Type,
		CashierID:   req.CashierID,
		PerformedBy: act.ID,
		CutDate:     time.Now(),
		Range:       req.Range,
		Metrics:     m,
		OrderIDs:    req.OrderIDs,
		MovementIDs: req.MovementIDs,
	}
	if err := e.cuts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns the cut history, an append-only audit trail.
func (e *Engine) List(ctx context.Context) ([]*Cut, error) {
	return e.cuts.List(ctx)
}
