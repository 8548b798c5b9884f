package hub

import (
	"context"
	"fmt"
	"sync"

	"go-notification-relay/internal/infrastructure/logger"
)

// Hub owns the connection registry and the broadcast dispatcher for the
// lifetime of the process. It is constructed and started in main before any
// route is reachable, so handlers never observe an uninitialized dispatcher.
type Hub struct {
	registry   *Registry
	dispatcher *Dispatcher

	running   bool
	runningMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	logger logger.Logger
}

var _ Broadcaster = (*Hub)(nil)

// New creates a stopped hub.
func New(log logger.Logger) *Hub {
	registry := NewRegistry(log)
	return &Hub{
		registry:   registry,
		dispatcher: NewDispatcher(registry, log),
		logger:     log.WithField("component", "hub"),
	}
}

// Start marks the hub as running. Starting an already running hub is an error.
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	h.logger.Info("hub started")
	return nil
}

// Stop closes all live connections best-effort and empties the registry.
// Stopping a stopped hub is a no-op.
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()

	for _, m := range h.registry.Snapshot() {
		if err := m.Conn.Close(); err != nil {
			h.logger.Errorf("failed to close connection %s: %v", m.ID, err)
		}
		h.registry.Unregister(m.ID)
	}

	h.running = false
	h.logger.Info("hub stopped")
	return nil
}

// IsRunning reports whether the hub accepts connections and broadcasts.
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// Register adds a new connection and returns its assigned id.
func (h *Hub) Register(conn Connection) (string, error) {
	if !h.IsRunning() {
		return "", ErrHubNotRunning
	}
	return h.registry.Register(conn), nil
}

// Unregister removes a connection. Safe to call more than once per id.
func (h *Hub) Unregister(id string) {
	h.registry.Unregister(id)
}

// Join opts a connection into a named group.
func (h *Hub) Join(id, group string) error {
	return h.registry.Join(id, group)
}

// Broadcast delivers event to all live connections.
func (h *Hub) Broadcast(ctx context.Context, event *Event) error {
	if !h.IsRunning() {
		return ErrHubNotRunning
	}
	return h.dispatcher.Broadcast(ctx, event)
}

// BroadcastTo delivers event to all connections in group.
func (h *Hub) BroadcastTo(ctx context.Context, group string, event *Event) error {
	if !h.IsRunning() {
		return ErrHubNotRunning
	}
	return h.dispatcher.BroadcastTo(ctx, group, event)
}

// Snapshot exposes the current membership for diagnostics endpoints.
func (h *Hub) Snapshot() []Member {
	return h.registry.Snapshot()
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Count()
}

// GroupCount returns the number of live connections in group.
func (h *Hub) GroupCount(group string) int {
	return h.registry.GroupCount(group)
}
