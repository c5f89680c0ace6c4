package runtime_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/mocks"
	"presence-lab/runtime"
	"presence-lab/runtime/workers"
)

type deliveryRecorder struct {
	mu         sync.Mutex
	deliveries []event.Delivery
}

func (h *deliveryRecorder) Handle(t event.Telemetry) {
	if d, ok := t.Payload.(event.Delivery); ok {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.deliveries = append(h.deliveries, d)
	}
}

func (h *deliveryRecorder) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.deliveries)
}

func newTestOrchestrator(t *testing.T) (*runtime.Orchestrator, *mocks.MockTransport, chan event.Telemetry) {
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	transport := mocks.NewMockTransport(ctrl)
	telemetry := make(chan event.Telemetry, 64)
	supervisor := workers.NewSupervisor(log, telemetry, 10*time.Millisecond)
	orchestrator := runtime.NewOrchestrator(log, supervisor, runtime.NewRegistry(),
		transport, telemetry, 100, 100, time.Hour)
	return orchestrator, transport, telemetry
}

func TestOrchestrator_Emit_To_Connected_User(t *testing.T) {
	req := require.New(t)
	orchestrator, transport, _ := newTestOrchestrator(t)
	ctx := context.Background()

	transport.EXPECT().Broadcast(gomock.Any(), gomock.Any()).AnyTimes()

	// Given u2 is connected on c9
	orchestrator.Connect(ctx, domain.NewConnection("c9", "u2", time.Now()))
	connectionID, ok := orchestrator.ResolveConnection("u2")
	req.True(ok)
	req.Equal(domain.ConnectionID("c9"), connectionID)
	req.Equal([]domain.UserID{"u2"}, orchestrator.OnlineUsers())

	// Then the producer event reaches c9
	payload := event.PostActivityPayload{UserName: "Alice"}
	transport.EXPECT().Send(gomock.Any(), domain.ConnectionID("c9"), event.New(event.PostLiked, payload)).
		Return(nil).Times(1)

	orchestrator.Emit(ctx, "u2", event.PostLiked, payload)
}

func TestOrchestrator_Emit_Without_Target(t *testing.T) {
	orchestrator, transport, _ := newTestOrchestrator(t)
	transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	orchestrator.Emit(context.Background(), "", event.FriendRequest, nil)
}

func TestOrchestrator_Start_Dispatches_Telemetry(t *testing.T) {
	req := require.New(t)
	orchestrator, transport, _ := newTestOrchestrator(t)
	recorder := &deliveryRecorder{}
	orchestrator.Add(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		orchestrator.Start(ctx)
		close(done)
	}()

	transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// When an event targets an offline user
	orchestrator.Emit(context.Background(), "u3", event.FriendRequest, event.FriendRequestPayload{RequestID: "r1"})

	// Then the delivery outcome reaches the telemetry handlers
	req.Eventually(func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)

	orchestrator.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Orchestrator should stop")
	}
}
