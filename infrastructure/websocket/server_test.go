package websocket_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"presence-lab/auth"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/infrastructure/websocket"
	"presence-lab/runtime"
	"presence-lab/runtime/workers"
)

type inboundFrame struct {
	Event event.Name      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *runtime.Orchestrator) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	telemetry := make(chan event.Telemetry, 64)
	hub := websocket.NewHub(log)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, telemetry, 10*time.Millisecond),
		runtime.NewRegistry(), hub, telemetry, 100, 100, time.Hour)
	server := websocket.NewServer(log, hub, orchestrator, auth.NewHandshakeResolver("", true), websocket.Settings{
		ConnectionBufferSize: 16,
		WriteTimeout:         time.Second,
		PongTimeout:          5 * time.Second,
		PingInterval:         time.Second,
		MaxFrameSize:         4096,
		AllowedOrigins:       []string{"http://localhost:5173"},
	})
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts, orchestrator
}

func dial(t *testing.T, ts *httptest.Server, query string) *gorilla.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/" + query
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// next reads frames until one named name shows up.
func next(t *testing.T, conn *gorilla.Conn, name event.Name) inboundFrame {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var frame inboundFrame
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Event == name {
			return frame
		}
	}
}

func TestServer_Presence_And_Typing_Relay(t *testing.T) {
	req := require.New(t)
	ts, orchestrator := newTestServer(t)

	// Given u1 then u2 connect
	alice := dial(t, ts, "?userId=u1")
	next(t, alice, event.GetOnlineUsers)
	bob := dial(t, ts, "?userId=u2")

	// Then u2 sees both users online
	var online []domain.UserID
	req.NoError(json.Unmarshal(next(t, bob, event.GetOnlineUsers).Data, &online))
	req.Equal([]domain.UserID{"u1", "u2"}, online)
	req.Eventually(func() bool { return len(orchestrator.OnlineUsers()) == 2 }, time.Second, 10*time.Millisecond)

	// When u1 types to u2
	req.NoError(alice.WriteJSON(map[string]any{"event": "typing", "data": map[string]string{"receiverId": "u2"}}))

	// Then u2 is told who is typing
	var typing event.TypingPayload
	req.NoError(json.Unmarshal(next(t, bob, event.Typing).Data, &typing))
	req.Equal(domain.UserID("u1"), typing.SenderID)

	// When a producer emits to u2
	orchestrator.Emit(context.Background(), "u2", event.PostLiked, event.PostActivityPayload{UserName: "Alice"})

	var liked event.PostActivityPayload
	req.NoError(json.Unmarshal(next(t, bob, event.PostLiked).Data, &liked))
	req.Equal("Alice", liked.UserName)

	// When u1 leaves
	req.NoError(alice.Close())

	// Then u2 sees only itself
	var after []domain.UserID
	req.NoError(json.Unmarshal(next(t, bob, event.GetOnlineUsers).Data, &after))
	req.Equal([]domain.UserID{"u2"}, after)
}

func TestServer_Anonymous_Connection_Gets_Snapshot(t *testing.T) {
	req := require.New(t)
	ts, orchestrator := newTestServer(t)

	alice := dial(t, ts, "?userId=u1")
	next(t, alice, event.GetOnlineUsers)

	// When a socket connects without identity
	anonymous := dial(t, ts, "")

	// Then it receives the current snapshot but is not online itself
	var online []domain.UserID
	req.NoError(json.Unmarshal(next(t, anonymous, event.GetOnlineUsers).Data, &online))
	req.Equal([]domain.UserID{"u1"}, online)
	req.Equal([]domain.UserID{"u1"}, orchestrator.OnlineUsers())
}

func TestServer_Rejects_Foreign_Origin(t *testing.T) {
	req := require.New(t)
	ts, _ := newTestServer(t)

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/?userId=u1", header)

	req.Error(err)
	req.Equal(http.StatusForbidden, resp.StatusCode)
}

func TestServer_Invalid_Token_Stays_Anonymous(t *testing.T) {
	req := require.New(t)
	ts, orchestrator := newTestServer(t)

	// When a socket presents a token that can not be verified
	conn := dial(t, ts, "?token=broken&userId=u1")

	// Then it is accepted but never becomes u1
	next(t, conn, event.GetOnlineUsers)
	req.Empty(orchestrator.OnlineUsers())
}
