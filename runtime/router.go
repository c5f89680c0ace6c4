package runtime

import (
	"context"
	"log/slog"
	"time"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
)

// Router delivers a named event to the single connection of a user.
// It never fails the caller: an offline user or a dead connection
// only shows up in the delivery telemetry.
type Router struct {
	log       *slog.Logger
	registry  contract.IRegistry
	transport contract.Transport
	telemetry chan<- event.Telemetry
}

func NewRouter(log *slog.Logger, registry contract.IRegistry,
	transport contract.Transport, telemetry chan<- event.Telemetry) *Router {
	return &Router{
		log:       log,
		registry:  registry,
		transport: transport,
		telemetry: telemetry,
	}
}

func (r *Router) Route(ctx context.Context, target domain.UserID, name event.Name, payload any) {
	delivery := event.Delivery{Target: target, Event: name, At: time.Now().UTC()}

	connectionID, ok := r.registry.Lookup(target)
	if !ok {
		delivery.Outcome = event.Offline
		r.log.Debug("Recipient offline, event dropped", "target", target, "event", name)
		publish(r.log, r.telemetry, event.NewTelemetry(event.DeliveryType, delivery))
		return
	}

	delivery.ConnectionID = connectionID
	delivery.Outcome = event.Delivered
	if err := r.transport.Send(ctx, connectionID, event.New(name, payload)); err != nil {
		delivery.Outcome = event.Failed
		r.log.Debug("Delivery failed", "target", target, "connection", connectionID,
			"event", name, "error", err)
	}
	publish(r.log, r.telemetry, event.NewTelemetry(event.DeliveryType, delivery))
}
