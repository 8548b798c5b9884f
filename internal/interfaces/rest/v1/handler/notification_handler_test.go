package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
	"go-notification-relay/internal/notification"
)

type memoryStore struct {
	mu      sync.Mutex
	records []notification.Record
	fail    error
}

func (s *memoryStore) Create(_ context.Context, message, userID string) (*notification.Record, error) {
	if s.fail != nil {
		return nil, s.fail
	}

	now := time.Now().UTC()
	record := notification.Record{
		ID:        uuid.NewString(),
		Message:   message,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()

	return &record, nil
}

func (s *memoryStore) List(context.Context) ([]notification.Record, error) {
	if s.fail != nil {
		return nil, s.fail
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Record(nil), s.records...), nil
}

func (s *memoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []*hub.Event
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, event *hub.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBroadcaster) BroadcastTo(_ context.Context, _ string, event *hub.Event) error {
	return b.Broadcast(context.Background(), event)
}

func (b *recordingBroadcaster) broadcasts() []*hub.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*hub.Event(nil), b.events...)
}

func newTestRouter(store notification.Store, broadcaster hub.Broadcaster) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewNotificationHandler(store, broadcaster, logger.NewNopLogger())

	router := gin.New()
	router.POST("/notification", h.Create)
	router.GET("/notification", h.List)
	return router
}

func postNotification(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/notification", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateNotification_Success(t *testing.T) {
	store := &memoryStore{}
	broadcaster := &recordingBroadcaster{}
	router := newTestRouter(store, broadcaster)

	recorder := postNotification(t, router, `{"message":"build passed","userId":"user-7"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp struct {
		Message string              `json:"message"`
		Success bool                `json:"success"`
		Data    notification.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))

	assert.Equal(t, "Notification Sent Successfully", resp.Message)
	assert.True(t, resp.Success)
	assert.Equal(t, "build passed", resp.Data.Message)
	assert.Equal(t, "user-7", resp.Data.UserID)
	assert.NotEmpty(t, resp.Data.ID)
	assert.False(t, resp.Data.Read)
	assert.False(t, resp.Data.CreatedAt.IsZero())

	// The persisted record was broadcast as a notification event.
	events := broadcaster.broadcasts()
	require.Len(t, events, 1)
	assert.Equal(t, hub.EventNotification, events[0].Name)
	record, ok := events[0].Payload.(*notification.Record)
	require.True(t, ok)
	assert.Equal(t, resp.Data.ID, record.ID)
}

func TestCreateNotification_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"userId":"user-7"}`},
		{"missing userId", `{"message":"hi"}`},
		{"empty message", `{"message":"","userId":"user-7"}`},
		{"empty userId", `{"message":"hi","userId":""}`},
		{"empty body", `{}`},
		{"malformed json", `{"message":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			broadcaster := &recordingBroadcaster{}
			router := newTestRouter(store, broadcaster)

			recorder := postNotification(t, router, tt.body)
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			var resp struct {
				Message string `json:"message"`
				Success bool   `json:"success"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
			assert.Equal(t, "Bad Request", resp.Message)
			assert.False(t, resp.Success)

			// Rejected before any side effect.
			assert.Equal(t, 0, store.size())
			assert.Empty(t, broadcaster.broadcasts())
		})
	}
}

func TestCreateNotification_StoreFailure(t *testing.T) {
	store := &memoryStore{fail: errors.New("disk full")}
	broadcaster := &recordingBroadcaster{}
	router := newTestRouter(store, broadcaster)

	recorder := postNotification(t, router, `{"message":"hi","userId":"u"}`)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "Internal Server Error", resp.Message)
	assert.False(t, resp.Success)

	// No broadcast when persistence failed.
	assert.Empty(t, broadcaster.broadcasts())
}

func TestListNotifications_Empty(t *testing.T) {
	router := newTestRouter(&memoryStore{}, &recordingBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var resp struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "No Notification Found", resp.Message)
	assert.False(t, resp.Success)
}

func TestListNotifications_ReturnsAll(t *testing.T) {
	store := &memoryStore{}
	router := newTestRouter(store, &recordingBroadcaster{})

	postNotification(t, router, `{"message":"one","userId":"u1"}`)
	postNotification(t, router, `{"message":"two","userId":"u2"}`)

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Message string                `json:"message"`
		Success bool                  `json:"success"`
		Data    []notification.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
}

func TestListNotifications_StoreFailure(t *testing.T) {
	router := newTestRouter(&memoryStore{fail: errors.New("connection refused")}, &recordingBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
