package hub

import (
	"context"
	"sync"
)

// mockConnection records every event sent to it and can be told to fail.
type mockConnection struct {
	mu       sync.Mutex
	received []*Event
	closed   bool
	sendErr  error

	ctx    context.Context
	cancel context.CancelFunc
}

var _ Connection = (*mockConnection)(nil)

func newMockConnection() *mockConnection {
	ctx, cancel := context.WithCancel(context.Background())
	return &mockConnection{ctx: ctx, cancel: cancel}
}

func newFailingConnection(err error) *mockConnection {
	c := newMockConnection()
	c.sendErr = err
	return c
}

func (m *mockConnection) Transport() string { return "mock" }

func (m *mockConnection) Send(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	if m.closed {
		return ErrConnectionClosed
	}
	m.received = append(m.received, event)
	return nil
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cancel()
	return nil
}

func (m *mockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConnection) Context() context.Context { return m.ctx }

func (m *mockConnection) Received() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Event(nil), m.received...)
}
