package hub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-notification-relay/internal/infrastructure/logger"
)

func TestSSEConnection_SendWritesEventStream(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), recorder, logger.NewNopLogger())
	defer conn.Close()

	assert.Equal(t, "sse", conn.Transport())
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	event := NewEvent(EventNotification, map[string]string{"message": "hello"})
	require.NoError(t, conn.Send(context.Background(), event))

	body := recorder.Body.String()
	assert.True(t, strings.Contains(body, "notification"), "event name missing: %q", body)
	assert.True(t, strings.Contains(body, "hello"), "payload missing: %q", body)
	assert.True(t, strings.Contains(body, event.ID), "event id missing: %q", body)
}

func TestSSEConnection_SendAfterClose(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), recorder, logger.NewNopLogger())

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.True(t, conn.IsClosed())

	err := conn.Send(context.Background(), NewEvent(EventNotification, "p"))
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestSSEConnection_AbandonedSendDoesNotWriteAfterClose(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), recorder, logger.NewNopLogger())

	// Hold the write lock so the send's writer goroutine is parked, let the
	// caller give up, then close. The parked writer must not touch the
	// response once the connection is closed.
	conn.writeMu.Lock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := conn.Send(ctx, NewEvent(EventNotification, "late"))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, conn.Close())
	conn.writeMu.Unlock()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, recorder.Body.String())
}

func TestSSEConnection_CloseCancelsContext(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), recorder, logger.NewNopLogger())

	require.NoError(t, conn.Close())

	select {
	case <-conn.Context().Done():
	default:
		t.Fatal("context should be cancelled after close")
	}
}
