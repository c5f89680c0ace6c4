package runtime

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/errors"
)

type session struct {
	conn    domain.Connection
	limiter *rate.Limiter
}

// LifecycleManager drives Connecting -> Established -> Closed for every connection.
// The sessions map is owned here, the registry only sees established identities.
type LifecycleManager struct {
	mu          sync.RWMutex
	log         *slog.Logger
	sessions    map[domain.ConnectionID]*session
	registry    contract.IRegistry
	router      contract.IRouter
	broadcaster contract.IBroadcaster
	relayRate   rate.Limit
	relayBurst  int
}

func NewLifecycleManager(log *slog.Logger, registry contract.IRegistry,
	router contract.IRouter, broadcaster contract.IBroadcaster,
	relayRate float64, relayBurst int) *LifecycleManager {
	return &LifecycleManager{
		log:         log,
		sessions:    make(map[domain.ConnectionID]*session),
		registry:    registry,
		router:      router,
		broadcaster: broadcaster,
		relayRate:   rate.Limit(relayRate),
		relayBurst:  relayBurst,
	}
}

// Connect accepts every connection. Only a claimed identity makes it Established,
// registered and part of the online set.
func (m *LifecycleManager) Connect(ctx context.Context, conn domain.Connection) {
	s := &session{conn: conn, limiter: rate.NewLimiter(m.relayRate, m.relayBurst)}

	if conn.UserID.IsAnonymous() {
		if !m.store(s) {
			return
		}
		m.log.Debug("Anonymous connection accepted", "connection", conn.ID)
		m.broadcaster.AnnounceTo(ctx, conn.ID)
		return
	}

	established, err := conn.Establish()
	if err != nil {
		m.log.Warn("Connection not established", "connection", conn.ID, "error", err)
		return
	}
	s.conn = established
	if !m.store(s) {
		return
	}
	m.registry.Register(established.UserID, established.ID)
	m.log.Info("User connected", "user", established.UserID, "connection", established.ID)
	m.broadcaster.Announce(ctx)
}

func (m *LifecycleManager) store(s *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.conn.ID]; ok {
		m.log.Warn("Connection already known, ignoring", "connection", s.conn.ID)
		return false
	}
	m.sessions[s.conn.ID] = s
	return true
}

// HandleInbound relays typing, stopTyping and messageRead to their declared recipient.
// Anything malformed, unknown or over the rate is dropped without feedback.
func (m *LifecycleManager) HandleInbound(ctx context.Context, connectionID domain.ConnectionID, frame event.Frame) {
	m.mu.RLock()
	s, ok := m.sessions[connectionID]
	m.mu.RUnlock()
	if !ok {
		m.log.Debug("Inbound frame dropped", "connection", connectionID, "error", errors.ErrConnectionNotFound)
		return
	}
	if !s.conn.IsEstablished() {
		m.log.Debug("Inbound frame from anonymous connection dropped", "connection", connectionID, "event", frame.Event)
		return
	}
	if !s.limiter.Allow() {
		m.log.Debug("Inbound frame dropped", "connection", connectionID, "event", frame.Event, "error", errors.ErrRateLimited)
		return
	}

	target, evt, err := event.DecodeRelay(frame, s.conn.UserID)
	if err != nil {
		m.log.Debug("Inbound frame dropped", "connection", connectionID, "event", frame.Event, "error", err)
		return
	}
	m.router.Route(ctx, target, evt.Name, evt.Payload)
}

// Disconnect is idempotent: only the first call for a connection has an effect.
func (m *LifecycleManager) Disconnect(ctx context.Context, connectionID domain.ConnectionID) {
	m.mu.Lock()
	s, ok := m.sessions[connectionID]
	delete(m.sessions, connectionID)
	m.mu.Unlock()
	if !ok {
		return
	}

	wasEstablished := s.conn.IsEstablished()
	s.conn = s.conn.Close()
	m.log.Debug("Connection closed", "connection", connectionID, "user", s.conn.UserID, "state", s.conn.State.String())
	if !wasEstablished {
		return
	}
	if m.registry.Unregister(connectionID) {
		m.log.Info("User disconnected", "user", s.conn.UserID, "connection", connectionID)
		m.broadcaster.Announce(ctx)
	}
}

// Sessions returns the number of live connections, anonymous ones included.
func (m *LifecycleManager) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
