// Package cash is the money-reconciliation side of the POS: the append-only
// ledger of manual cash movements and the cash-cut engine that reconciles
// expected against declared cash over a business-day window.
package cash

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/restaurant-pos/internal/apperr"
	"github.com/example/restaurant-pos/internal/shift"
)

type MovementType string

const (
	MovementEntry MovementType = "entry"
	MovementExit  MovementType = "exit"
)

// Movement is one manual cash entry or exit. Immutable once recorded;
// corrections are new movements, never edits.
type Movement struct {
	ID          string       `json:"id"`
	Type        MovementType `json:"type"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	UserID      string       `json:"user_id"`
	Date        time.Time    `json:"date"`
}

// MovementStore is the persistence contract for the ledger. ListBetween
// returns movements with Date inside [start, end], newest first; an empty
// userID matches every user.
type MovementStore interface {
	Create(ctx context.Context, m *Movement) error
	ListBetween(ctx context.Context, start, end time.Time, userID string) ([]*Movement, error)
}

// Ledger records and lists manual cash movements.
type Ledger struct {
	store MovementStore
}

func NewLedger(store MovementStore) *Ledger {
	return &Ledger{store: store}
}

// Record validates and appends a movement.
func (l *Ledger) Record(ctx context.Context, typ MovementType, amount float64, description, userID string) (*Movement, error) {
	if typ != MovementEntry && typ != MovementExit {
		return nil, apperr.InvalidArgumentf("unknown movement type %q", typ)
	}
	if amount <= 0 {
		return nil, apperr.InvalidArgumentf("amount must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperr.InvalidArgumentf("description is required")
	}

	m := &Movement{
		ID:          uuid.New().String(),
		Type:        typ,
		Amount:      amount,
		Description: description,
		UserID:      userID,
		Date:        time.Now(),
	}
	if err := l.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListFilter narrows a movement listing. A nil Range means the current
// calendar day.
type ListFilter struct {
	Range  *shift.Window
	UserID string
}

// List returns movements newest first.
func (l *Ledger) List(ctx context.Context, f ListFilter) ([]*Movement, error) {
	w := shift.DayWindow(time.Now())
	if f.Range != nil {
		w = *f.Range
	}
	return l.store.ListBetween(ctx, w.Start, w.End, f.UserID)
}
