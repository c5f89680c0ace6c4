package websocket

import (
	"context"
	"log/slog"
	"sync"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/errors"
)

// Hub maps connection identities to their outbound sink.
// It is the Transport the router and the broadcaster write to.
type Hub struct {
	mu    sync.RWMutex
	log   *slog.Logger
	sinks map[domain.ConnectionID]contract.EventSink
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, sinks: make(map[domain.ConnectionID]contract.EventSink)}
}

func (h *Hub) Attach(connectionID domain.ConnectionID, sink contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[connectionID] = sink
}

func (h *Hub) Detach(connectionID domain.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sinks, connectionID)
}

// Send enqueues e on a single connection. The hub lock is released before
// the sink is touched.
func (h *Hub) Send(ctx context.Context, connectionID domain.ConnectionID, e event.Event) error {
	h.mu.RLock()
	sink, ok := h.sinks[connectionID]
	h.mu.RUnlock()
	if !ok {
		return errors.ErrConnectionNotFound
	}
	return sink.Consume(ctx, e)
}

// Broadcast enqueues e on every attached connection, anonymous ones included.
func (h *Hub) Broadcast(ctx context.Context, e event.Event) {
	h.mu.RLock()
	targets := make(map[domain.ConnectionID]contract.EventSink, len(h.sinks))
	for id, sink := range h.sinks {
		targets[id] = sink
	}
	h.mu.RUnlock()

	for id, sink := range targets {
		if err := sink.Consume(ctx, e); err != nil {
			h.log.Debug("Broadcast skipped connection", "connection", id, "event", e.Name, "error", err)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sinks)
}
