// Package websocket is the socket transport of the presence layer.
// Frames are JSON objects {"event": name, "data": payload} in both directions.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/sink"
)

// IdentityResolver extracts the claimed identity from the upgrade request.
type IdentityResolver interface {
	Resolve(r *http.Request) (domain.UserID, error)
}

type Settings struct {
	ConnectionBufferSize int
	WriteTimeout         time.Duration
	PongTimeout          time.Duration
	PingInterval         time.Duration
	MaxFrameSize         int64
	AllowedOrigins       []string
}

// Server upgrades HTTP requests and runs one read pump and one write pump per socket.
type Server struct {
	log      *slog.Logger
	hub      *Hub
	handler  contract.IConnectionHandler
	resolver IdentityResolver
	settings Settings
	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, hub *Hub, handler contract.IConnectionHandler,
	resolver IdentityResolver, settings Settings) *Server {
	s := &Server{
		log:      log,
		hub:      hub,
		handler:  handler,
		resolver: resolver,
		settings: settings,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin accepts non-browser clients, which send no Origin header.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.settings.AllowedOrigins) == 0 {
		return true
	}
	return lo.Contains(s.settings.AllowedOrigins, "*") || lo.Contains(s.settings.AllowedOrigins, origin)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := s.resolver.Resolve(r)
	if err != nil {
		s.log.Warn("Untrusted handshake, connection stays anonymous", "remote", r.RemoteAddr, "error", err)
		userID = ""
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	connectionID := domain.ConnectionID(uuid.NewString())
	outbound := sink.NewWebsocketSink(s.log, connectionID, s.settings.ConnectionBufferSize)
	// The request context dies with the handler, the socket outlives it
	ctx := context.WithoutCancel(r.Context())

	s.hub.Attach(connectionID, outbound)
	s.handler.Connect(ctx, domain.NewConnection(connectionID, userID, time.Now().UTC()))

	go s.writePump(conn, outbound)
	go func() {
		s.readPump(ctx, conn, connectionID)
		s.hub.Detach(connectionID)
		outbound.Close()
		s.handler.Disconnect(ctx, connectionID)
	}()
}

// readPump owns the read side of the socket. It returns on any read error,
// a graceful close and a dead peer end up on the same path.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, connectionID domain.ConnectionID) {
	defer conn.Close()

	conn.SetReadLimit(s.settings.MaxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.settings.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.settings.PongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("Socket read error", "connection", connectionID, "error", err)
			}
			return
		}
		var frame event.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// A broken frame is not a broken socket
			s.log.Debug("Unreadable frame dropped", "connection", connectionID, "error", err)
			continue
		}
		s.handler.HandleInbound(ctx, connectionID, frame)
	}
}

// writePump is the only writer of the socket.
func (s *Server) writePump(conn *websocket.Conn, outbound *sink.WebsocketSink) {
	ticker := time.NewTicker(s.settings.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-outbound.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case e := <-outbound.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := conn.WriteJSON(e.Frame()); err != nil {
				s.log.Debug("Socket write error", "event", e.Name, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
