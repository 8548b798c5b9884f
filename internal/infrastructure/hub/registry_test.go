package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-notification-relay/internal/infrastructure/logger"
)

func TestRegistry_RegisterAssignsUniqueIDs(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := registry.Register(newMockConnection())
		_, dup := seen[id]
		require.False(t, dup, "id %s assigned twice", id)
		seen[id] = struct{}{}
	}

	assert.Equal(t, 100, registry.Count())
}

func TestRegistry_UnregisterRemovesFromSnapshot(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	id := registry.Register(newMockConnection())
	registry.Unregister(id)

	for _, m := range registry.Snapshot() {
		assert.NotEqual(t, id, m.ID)
	}
	assert.Equal(t, 0, registry.Count())
}

func TestRegistry_UnregisterUnknownIDIsNoop(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	registry.Register(newMockConnection())

	// Duplicate close signals from the transport must be harmless.
	registry.Unregister("no-such-id")
	registry.Unregister("no-such-id")

	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	id1 := registry.Register(newMockConnection())
	registry.Register(newMockConnection())

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)

	// Mutating the registry after the snapshot must not affect it.
	registry.Unregister(id1)
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Groups(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	id1 := registry.Register(newMockConnection())
	id2 := registry.Register(newMockConnection())

	require.NoError(t, registry.Join(id1, "room-a"))
	require.NoError(t, registry.Join(id1, "room-b"))
	require.NoError(t, registry.Join(id2, "room-a"))

	assert.Len(t, registry.SnapshotGroup("room-a"), 2)
	assert.Len(t, registry.SnapshotGroup("room-b"), 1)

	// Disconnecting removes the connection from every group it was in.
	registry.Unregister(id1)
	assert.Len(t, registry.SnapshotGroup("room-a"), 1)
	assert.Empty(t, registry.SnapshotGroup("room-b"))
}

func TestRegistry_JoinUnknownConnection(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	err := registry.Join("no-such-id", "room-a")
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry(logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := newMockConnection()
			id := registry.Register(conn)
			_ = registry.Join(id, "room")

			for _, m := range registry.Snapshot() {
				// A snapshot must never contain a freed handle.
				assert.NotNil(t, m.Conn)
			}

			registry.Unregister(id)
			conn.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, registry.Count())
	assert.Empty(t, registry.SnapshotGroup("room"))
}
