package hub

import (
	"context"
	"time"

	"go-notification-relay/internal/infrastructure/logger"
)

const sendTimeout = 10 * time.Second

// Dispatcher delivers events to the registry's current membership. Delivery is
// best-effort and at-most-once per connection: there is no acknowledgment,
// retry, or replay, and a client disconnected at broadcast time simply misses
// the event.
type Dispatcher struct {
	registry *Registry
	logger   logger.Logger
}

var _ Broadcaster = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher bound to registry.
func NewDispatcher(registry *Registry, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   log.WithField("component", "dispatcher"),
	}
}

// Broadcast sends event to every connection live at call time. It takes a
// registry snapshot and returns as soon as the per-connection sends have been
// dispatched; it never blocks on slow clients. A send failure is logged and the
// failed connection is removed, without affecting delivery to the rest.
func (d *Dispatcher) Broadcast(ctx context.Context, event *Event) error {
	members := d.registry.Snapshot()
	d.fanOut(ctx, members, event)

	d.logger.Infof("broadcasting event %s (%s) to %d connections", event.ID, event.Name, len(members))
	return nil
}

// BroadcastTo sends event to every member of one group.
func (d *Dispatcher) BroadcastTo(ctx context.Context, group string, event *Event) error {
	members := d.registry.SnapshotGroup(group)
	d.fanOut(ctx, members, event)

	d.logger.Infof("broadcasting event %s (%s) to %d connections in group %s", event.ID, event.Name, len(members), group)
	return nil
}

func (d *Dispatcher) fanOut(ctx context.Context, members []Member, event *Event) {
	for _, m := range members {
		go func(m Member) {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
			defer cancel()

			if err := m.Conn.Send(sctx, event); err != nil {
				d.logger.Errorf("failed to send event %s to connection %s: %v", event.ID, m.ID, err)
				d.registry.Unregister(m.ID)
				_ = m.Conn.Close()
			}
		}(m)
	}
}
