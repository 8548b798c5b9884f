package hub

import (
	"sync"

	"github.com/google/uuid"

	"go-notification-relay/internal/infrastructure/logger"
)

// Member pairs a live connection with the id the registry assigned to it.
type Member struct {
	ID   string
	Conn Connection
}

// Registry is the single source of truth for currently reachable connections.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]Connection
	groups map[string]map[string]struct{} // group -> set of connection ids
	joined map[string]map[string]struct{} // connection id -> set of groups

	logger logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Connection),
		groups: make(map[string]map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
		logger: log.WithField("component", "registry"),
	}
}

// Register stores conn and returns the identifier assigned to it. Identifiers
// are unique among live connections; each call represents a genuinely new
// transport-level connection.
func (r *Registry) Register(conn Connection) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()

	r.logger.Infof("connection %s registered (transport: %s)", id, conn.Transport())
	return id
}

// Unregister removes the connection and all of its group memberships. Calling
// it with an id that is absent is a no-op, so duplicate close signals from the
// transport are harmless.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, exists := r.conns[id]
	delete(r.conns, id)
	for group := range r.joined[id] {
		delete(r.groups[group], id)
		if len(r.groups[group]) == 0 {
			delete(r.groups, group)
		}
	}
	delete(r.joined, id)
	r.mu.Unlock()

	if exists {
		r.logger.Infof("connection %s unregistered", id)
	}
}

// Join adds the connection to a named group. Membership is additive; a
// connection may belong to any number of groups until it disconnects.
func (r *Registry) Join(id, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; !exists {
		return ErrConnectionNotFound
	}

	if r.groups[group] == nil {
		r.groups[group] = make(map[string]struct{})
	}
	r.groups[group][id] = struct{}{}

	if r.joined[id] == nil {
		r.joined[id] = make(map[string]struct{})
	}
	r.joined[id][group] = struct{}{}

	r.logger.Infof("connection %s joined group %s", id, group)
	return nil
}

// Snapshot returns a copy of the current membership. Callers iterate the copy,
// so a connection closing mid-iteration cannot corrupt anything.
func (r *Registry) Snapshot() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]Member, 0, len(r.conns))
	for id, conn := range r.conns {
		members = append(members, Member{ID: id, Conn: conn})
	}
	return members
}

// SnapshotGroup returns a copy of the membership of one group.
func (r *Registry) SnapshotGroup(group string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.groups[group]
	members := make([]Member, 0, len(ids))
	for id := range ids {
		if conn, exists := r.conns[id]; exists {
			members = append(members, Member{ID: id, Conn: conn})
		}
	}
	return members
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// GroupCount returns the number of live connections in one group.
func (r *Registry) GroupCount(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}
