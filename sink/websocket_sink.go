package sink

import (
	"context"
	"log/slog"
	"sync"

	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/errors"
)

// WebsocketSink is the outbound queue of one socket.
// The router and the broadcaster write into it, the write pump of the socket drains it.
type WebsocketSink struct {
	log          *slog.Logger
	connectionID domain.ConnectionID
	outbound     chan event.Event
	closed       chan struct{}
	closeOnce    sync.Once
}

func NewWebsocketSink(log *slog.Logger, connectionID domain.ConnectionID, bufferSize int) *WebsocketSink {
	return &WebsocketSink{
		log:          log,
		connectionID: connectionID,
		outbound:     make(chan event.Event, bufferSize),
		closed:       make(chan struct{}),
	}
}

// Consume never blocks. A slow socket loses events instead of stalling the sender.
func (s *WebsocketSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.closed:
		return errors.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.outbound <- e:
		return nil
	case <-s.closed:
		return errors.ErrConnectionClosed
	default:
		s.log.Warn("Outbound buffer full, event dropped",
			"connection", s.connectionID, "event", e.Name)
		return errors.ErrSendBufferFull
	}
}

func (s *WebsocketSink) Outbound() <-chan event.Event { return s.outbound }

// Done is closed once the sink stops accepting events.
func (s *WebsocketSink) Done() <-chan struct{} { return s.closed }

// Close is safe to call more than once. outbound is never closed so that
// a concurrent Consume can not panic on a closed channel.
func (s *WebsocketSink) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}
