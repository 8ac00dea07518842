package mocks

import (
	"context"
	"sync"

	"github.com/example/restaurant-pos/internal/domain/menu"
	"github.com/example/restaurant-pos/internal/domain/staff"
	"github.com/example/restaurant-pos/internal/domain/table"
)

// MockTableStore is an in-memory table.Store.
type MockTableStore struct {
	mu     sync.RWMutex
	tables map[string]*table.Table

	SaveCalls []string
}

func NewMockTableStore() *MockTableStore {
	return &MockTableStore{tables: make(map[string]*table.Table)}
}

func (m *MockTableStore) Create(_ context.Context, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
	return nil
}

func (m *MockTableStore) Get(_ context.Context, id string) (*table.Table, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	return t, ok, nil
}

func (m *MockTableStore) Save(_ context.Context, t *table.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[t.ID] = t
	m.SaveCalls = append(m.SaveCalls, t.ID)
	return nil
}

func (m *MockTableStore) List(_ context.Context) ([]*table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*table.Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	return out, nil
}

// MockMenuStore is an in-memory menu.Store.
type MockMenuStore struct {
	mu    sync.RWMutex
	items map[string]*menu.MenuItem

	AdjustCalls []AdjustCall
}

type AdjustCall struct {
	ID    string
	Delta int
}

func NewMockMenuStore() *MockMenuStore {
	return &MockMenuStore{items: make(map[string]*menu.MenuItem)}
}

func (m *MockMenuStore) Create(_ context.Context, it *menu.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
	return nil
}

func (m *MockMenuStore) Get(_ context.Context, id string) (*menu.MenuItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	return it, ok, nil
}

func (m *MockMenuStore) Save(_ context.Context, it *menu.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = it
	return nil
}

func (m *MockMenuStore) List(_ context.Context) ([]*menu.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*menu.MenuItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *MockMenuStore) AdjustStock(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdjustCalls = append(m.AdjustCalls, AdjustCall{ID: id, Delta: delta})
	if it, ok := m.items[id]; ok {
		it.Stock += delta
	}
	return nil
}

// MockStaffStore is an in-memory staff.Store.
type MockStaffStore struct {
	mu    sync.RWMutex
	users map[string]*staff.User
}

func NewMockStaffStore() *MockStaffStore {
	return &MockStaffStore{users: make(map[string]*staff.User)}
}

func (m *MockStaffStore) Create(_ context.Context, u *staff.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *MockStaffStore) Get(_ context.Context, id string) (*staff.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MockStaffStore) GetByEmail(_ context.Context, email string) (*staff.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (m *MockStaffStore) List(_ context.Context) ([]*staff.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*staff.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}
