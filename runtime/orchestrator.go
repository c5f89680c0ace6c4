// Package runtime tracks who is online and moves events to the right connection.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/runtime/workers"
)

// Orchestrator owns one registry instance and wires the router, the broadcaster
// and the lifecycle manager around it. It is the IEmitter handed to producers
// and the IConnectionHandler handed to the transport.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       *Registry
	router         *Router
	broadcaster    *Broadcaster
	lifecycle      *LifecycleManager
	telemetry      chan event.Telemetry
	handlers       []event.Handler
	metricInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry *Registry, transport contract.Transport, telemetry chan event.Telemetry,
	relayRate float64, relayBurst int, metricInterval time.Duration) *Orchestrator {
	router := NewRouter(log, registry, transport, telemetry)
	broadcaster := NewBroadcaster(log, registry, transport, telemetry)
	return &Orchestrator{
		log:            log,
		supervisor:     supervisor,
		registry:       registry,
		router:         router,
		broadcaster:    broadcaster,
		lifecycle:      NewLifecycleManager(log, registry, router, broadcaster, relayRate, relayBurst),
		telemetry:      telemetry,
		metricInterval: metricInterval,
	}
}

// Add registers telemetry handlers. Must be called before Start.
func (o *Orchestrator) Add(handlers ...event.Handler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.handlers = append(o.handlers, handlers...)
}

// Emit routes an event produced by a domain operation.
// It never fails because the target is offline.
func (o *Orchestrator) Emit(ctx context.Context, target domain.UserID, name event.Name, payload any) {
	if target.IsAnonymous() {
		o.log.Debug("Event without target dropped", "event", name)
		return
	}
	o.router.Route(ctx, target, name, payload)
}

func (o *Orchestrator) ResolveConnection(userID domain.UserID) (domain.ConnectionID, bool) {
	return o.registry.Lookup(userID)
}

func (o *Orchestrator) OnlineUsers() []domain.UserID {
	return o.registry.Snapshot()
}

func (o *Orchestrator) Connect(ctx context.Context, conn domain.Connection) {
	o.lifecycle.Connect(ctx, conn)
}

func (o *Orchestrator) HandleInbound(ctx context.Context, connectionID domain.ConnectionID, frame event.Frame) {
	o.lifecycle.HandleInbound(ctx, connectionID, frame)
}

func (o *Orchestrator) Disconnect(ctx context.Context, connectionID domain.ConnectionID) {
	o.lifecycle.Disconnect(ctx, connectionID)
}

// Sessions counts live connections, anonymous ones included.
func (o *Orchestrator) Sessions() int {
	return o.lifecycle.Sessions()
}

// Start registers the telemetry workers and blocks while the supervisor runs them.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	handlers := append([]event.Handler(nil), o.handlers...)
	o.supervisor.Add(
		workers.NewTelemetryWorker(o.log, o.telemetry, handlers),
		workers.NewChannelCapacityWorker(o.log,
			[]workers.NamedChannel{{Name: "telemetry", Channel: o.telemetry}},
			o.telemetry, o.metricInterval),
	)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
}

// Stop cancels the supervised workers. Connections are left to the transport.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
