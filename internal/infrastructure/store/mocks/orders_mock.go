// Package mocks provides in-memory store implementations with recorded
// calls for tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/restaurant-pos/internal/domain/order"
)

// MockOrderStore is an in-memory order.Store.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	seq    []string // insertion order for stable listings

	CreateCalls []string
	SaveCalls   []string
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]*order.Order)}
}

func (m *MockOrderStore) Create(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	m.seq = append(m.seq, o.ID)
	m.CreateCalls = append(m.CreateCalls, o.ID)
	return nil
}

func (m *MockOrderStore) Get(_ context.Context, id string) (*order.Order, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	return o, ok, nil
}

func (m *MockOrderStore) Save(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.ID]; !ok {
		m.seq = append(m.seq, o.ID)
	}
	m.orders[o.ID] = o
	m.SaveCalls = append(m.SaveCalls, o.ID)
	return nil
}

func (m *MockOrderStore) List(_ context.Context) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*order.Order, 0, len(m.seq))
	for _, id := range m.seq {
		out = append(out, m.orders[id])
	}
	return out, nil
}

func (m *MockOrderStore) ListByStatus(_ context.Context, s order.Status) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, id := range m.seq {
		if o := m.orders[id]; o.Status == s {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderStore) ListCompletedBetween(_ context.Context, start, end time.Time) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*order.Order
	for _, id := range m.seq {
		o := m.orders[id]
		if o.Status != order.StatusCompleted {
			continue
		}
		if o.UpdatedAt.Before(start) || o.UpdatedAt.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
