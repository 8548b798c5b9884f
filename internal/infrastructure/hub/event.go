package hub

import "github.com/google/uuid"

// EventName identifies the kind of an event on the realtime channel. The set
// is closed: clients and server agree on these names and nothing else.
type EventName string

const (
	// EventConnected is sent to a client right after its connection is
	// registered. Payload carries the assigned connection id.
	EventConnected EventName = "connected"

	// EventNotification carries a persisted notification record to clients.
	EventNotification EventName = "notification"

	// EventJoinRoom is sent by a client to opt its connection into a group.
	// Payload is the group identifier.
	EventJoinRoom EventName = "join_room"

	// EventKeepAlive is a transport-level heartbeat; clients may ignore it.
	EventKeepAlive EventName = "keepalive"
)

// Event is the unit of delivery on the realtime channel.
type Event struct {
	ID      string    `json:"id"`
	Name    EventName `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// NewEvent builds an event with a generated id.
func NewEvent(name EventName, payload any) *Event {
	return &Event{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: payload,
	}
}
