package hub

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sse"

	"go-notification-relay/internal/infrastructure/logger"
)

const keepAliveInterval = 30 * time.Second

// SSEConnection is a Connection backed by a Server-Sent Events response
// stream. The HTTP handler keeps the response open for the connection's
// lifetime; everything written here goes through that single writer.
type SSEConnection struct {
	writer  http.ResponseWriter
	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger
}

var _ Connection = (*SSEConnection)(nil)

// NewSSEConnection wraps an open SSE response stream. It sets the SSE headers
// and starts the keep-alive ticker; the caller registers it with the hub.
func NewSSEConnection(ctx context.Context, w http.ResponseWriter, log logger.Logger) *SSEConnection {
	rctx, cancel := context.WithCancel(ctx)

	conn := &SSEConnection{
		writer: w,
		ctx:    rctx,
		cancel: cancel,
		logger: log.WithField("transport", "sse"),
	}

	conn.writeHeaders()
	go conn.keepAlive()

	return conn
}

// Transport returns "sse".
func (c *SSEConnection) Transport() string {
	return "sse"
}

// Send writes one event to the stream. Concurrent calls are serialized, so
// successive events reach the client in the order they were accepted.
func (c *SSEConnection) Send(ctx context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	done := make(chan error, 1)
	go func() {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()

		// The caller may have given up and the handler may be gone by the
		// time the lock is acquired; the response writer must not be touched
		// once the connection is closed.
		if c.IsClosed() {
			done <- ErrConnectionClosed
			return
		}

		err := sse.Encode(c.writer, sse.Event{
			Id:    event.ID,
			Event: string(event.Name),
			Data:  event.Payload,
		})
		if err == nil {
			if flusher, ok := c.writer.(http.Flusher); ok {
				flusher.Flush()
			}
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			c.logger.Errorf("failed to write event %s: %v", event.ID, err)
			_ = c.Close()
			return fmt.Errorf("write sse event: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close marks the connection closed and cancels its context, which releases
// the handler holding the response open. Closing twice is a no-op.
func (c *SSEConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	c.logger.Info("sse connection closed")
	return nil
}

// IsClosed reports whether the connection has been closed.
func (c *SSEConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

// Context is cancelled when the connection closes.
func (c *SSEConnection) Context() context.Context {
	return c.ctx
}

func (c *SSEConnection) writeHeaders() {
	h := c.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx
	h.Set("Access-Control-Allow-Origin", "*")
}

func (c *SSEConnection) keepAlive() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Send(c.ctx, NewEvent(EventKeepAlive, nil)); err != nil {
				if !c.IsClosed() {
					c.logger.Errorf("failed to send keep-alive: %v", err)
					_ = c.Close()
				}
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}
