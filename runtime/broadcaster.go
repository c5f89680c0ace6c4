package runtime

import (
	"context"
	"log/slog"
	"sync"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
)

// Broadcaster publishes the full online set to every connected party.
// Snapshot and enqueue happen under one lock so that two announcements
// reach the transport in the order their snapshots were taken.
type Broadcaster struct {
	mu        sync.Mutex
	log       *slog.Logger
	registry  contract.IRegistry
	transport contract.Transport
	telemetry chan<- event.Telemetry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry,
	transport contract.Transport, telemetry chan<- event.Telemetry) *Broadcaster {
	return &Broadcaster{
		log:       log,
		registry:  registry,
		transport: transport,
		telemetry: telemetry,
	}
}

// Announce sends getOnlineUsers to every connection, anonymous ones included.
func (b *Broadcaster) Announce(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	online := b.registry.Snapshot()
	b.transport.Broadcast(ctx, event.New(event.GetOnlineUsers, online))
	b.log.Debug("Online users announced", "count", len(online))
	publish(b.log, b.telemetry, event.NewTelemetry(event.PresenceChangedType,
		event.PresenceChanged{Online: len(online)}))
}

// AnnounceTo sends the current snapshot to a single connection.
// Used for connections that do not change the online set, like anonymous ones.
func (b *Broadcaster) AnnounceTo(ctx context.Context, connectionID domain.ConnectionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	online := b.registry.Snapshot()
	if err := b.transport.Send(ctx, connectionID, event.New(event.GetOnlineUsers, online)); err != nil {
		b.log.Debug("Unable to send online users", "connection", connectionID, "error", err)
	}
}
