package hub

import (
	"context"
	"errors"
)

var (
	// ErrHubNotRunning is returned when an operation requires a started hub.
	ErrHubNotRunning = errors.New("hub is not running")

	// ErrConnectionNotFound is returned for operations on unknown connection ids.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrConnectionClosed is returned when sending on a closed connection.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrSlowClient is returned when a connection's outbound buffer is full.
	// The dispatcher disconnects such clients instead of blocking on them.
	ErrSlowClient = errors.New("outbound buffer full")
)

// Connection is one live channel to one client, regardless of transport
// (SSE, WebSocket, ...). Implementations must allow concurrent Send calls.
type Connection interface {
	Transport() string
	Send(ctx context.Context, event *Event) error
	Close() error
	IsClosed() bool
	Context() context.Context
}

// Broadcaster is the fan-out contract handlers depend on. The local Dispatcher
// is the only implementation; a multi-instance backend would satisfy the same
// interface without changing callers.
type Broadcaster interface {
	Broadcast(ctx context.Context, event *Event) error
	BroadcastTo(ctx context.Context, group string, event *Event) error
}
