package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-notification-relay/internal/infrastructure/logger"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsPongTimeout    = 60 * time.Second
	wsPingInterval   = 54 * time.Second // below pong timeout
	wsSendBufferSize = 256
)

// WebSocketConnection is the write side of one WebSocket client. Events are
// queued on a bounded buffer drained by a single write pump, preserving order
// per client. Reading (including the join_room event) is the handler's job.
type WebSocketConnection struct {
	conn *websocket.Conn

	send chan *Event

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger
}

var _ Connection = (*WebSocketConnection)(nil)

// NewWebSocketConnection wraps an upgraded WebSocket connection and starts its
// write pump. The caller registers it with the hub and runs the read loop.
func NewWebSocketConnection(conn *websocket.Conn, log logger.Logger) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &WebSocketConnection{
		conn:   conn,
		send:   make(chan *Event, wsSendBufferSize),
		ctx:    ctx,
		cancel: cancel,
		logger: log.WithField("transport", "websocket"),
	}

	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	go c.writePump()

	return c
}

// Transport returns "websocket".
func (c *WebSocketConnection) Transport() string {
	return "websocket"
}

// Send queues an event for delivery. If the outbound buffer is full the event
// is not queued and ErrSlowClient is returned; the dispatcher disconnects such
// clients rather than letting them stall a broadcast.
func (c *WebSocketConnection) Send(ctx context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	select {
	case c.send <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		return ErrSlowClient
	}
}

// Close sends a close frame best-effort and tears the connection down.
// Closing twice is a no-op.
func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	// The write pump may be mid-write on another goroutine; WriteControl is
	// the only write that is safe to issue concurrently with it.
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout),
	)
	c.conn.Close()

	c.logger.Info("websocket connection closed")
	return nil
}

// IsClosed reports whether the connection has been closed.
func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Context is cancelled when the connection closes.
func (c *WebSocketConnection) Context() context.Context {
	return c.ctx
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with periodic pings. It is the only goroutine writing to the socket.
func (c *WebSocketConnection) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Errorf("failed to write event %s: %v", event.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Errorf("failed to send ping: %v", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
