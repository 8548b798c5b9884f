// Package notification holds the notification record model and its durable
// store. The realtime side never mutates records; the broadcast payload is the
// record exactly as persisted.
package notification

import (
	"context"
	"time"
)

// Record is one persisted notification. Immutable once broadcast.
type Record struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	UserID    string    `json:"userId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the durable collaborator the relay writes through.
type Store interface {
	Create(ctx context.Context, message, userID string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
}
