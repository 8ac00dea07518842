package mocks

import (
	"context"
	"sync"
)

// Published records one notification for assertions.
type Published struct {
	Event   string
	Key     string
	Payload any
}

// MockPublisher records published notifications. Err, when set, is returned
// from every Publish so tests can verify publish failures stay non-fatal.
type MockPublisher struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) Publish(_ context.Context, event, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, Published{Event: event, Key: key, Payload: payload})
	return p.Err
}

// ByEvent returns the recorded notifications with the given event name.
func (p *MockPublisher) ByEvent(event string) []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Published
	for _, e := range p.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
