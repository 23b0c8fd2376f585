package services

import (
	"context"
	"sync"
)

// MockEventPublisher records published events for testing
type MockEventPublisher struct {
	events []OrderEvent
	mu     sync.RWMutex

	// Err, when set, is returned by Publish instead of recording the event.
	Err error
}

// NewMockEventPublisher creates an empty recorder
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(_ context.Context, event OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// Events returns a copy of the recorded events
func (m *MockEventPublisher) Events() []OrderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]OrderEvent(nil), m.events...)
}

// Clear forgets recorded events
func (m *MockEventPublisher) Clear() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
