package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/restaurant-pos/internal/domain/cash"
)

// MockMovementStore is an in-memory cash.MovementStore.
type MockMovementStore struct {
	mu        sync.RWMutex
	movements []*cash.Movement

	CreateCalls []string
}

func NewMockMovementStore() *MockMovementStore {
	return &MockMovementStore{}
}

func (m *MockMovementStore) Create(_ context.Context, mv *cash.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, mv)
	m.CreateCalls = append(m.CreateCalls, mv.ID)
	return nil
}

func (m *MockMovementStore) ListBetween(_ context.Context, start, end time.Time, userID string) ([]*cash.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*cash.Movement
	for _, mv := range m.movements {
		if mv.Date.Before(start) || mv.Date.After(end) {
			continue
		}
		if userID != "" && mv.UserID != userID {
			continue
		}
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// MockCutStore is an in-memory cash.CutStore.
type MockCutStore struct {
	mu   sync.RWMutex
	cuts []*cash.Cut

	CreateCalls []string
}

func NewMockCutStore() *MockCutStore {
	return &MockCutStore{}
}

func (m *MockCutStore) Create(_ context.Context, c *cash.Cut) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cuts = append(m.cuts, c)
	m.CreateCalls = append(m.CreateCalls, c.ID)
	return nil
}

func (m *MockCutStore) List(_ context.Context) ([]*cash.Cut, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*cash.Cut, len(m.cuts))
	copy(out, m.cuts)
	sort.Slice(out, func(i, j int) bool { return out[i].CutDate.After(out[j].CutDate) })
	return out, nil
}

func (m *MockCutStore) LastCashierCut(_ context.Context, cashierID string) (*cash.Cut, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var last *cash.Cut
	for _, c := range m.cuts {
		if c.Type != cash.CutCashier || c.CashierID != cashierID {
			continue
		}
		if last == nil || c.CutDate.After(last.CutDate) {
			last = c
		}
	}
	return last, last != nil, nil
}
