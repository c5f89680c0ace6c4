package runtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/errors"
	"presence-lab/mocks"
)

func TestRouter_Route_Offline_Recipient(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	telemetry := make(chan event.Telemetry, 10)

	// Given u2 is connected but u3 is not
	registry := NewRegistry()
	registry.Register("u2", "c2")
	router := NewRouter(log, registry, transport, telemetry)

	// Then nothing is sent
	transport.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// When an event targets u3
	router.Route(context.Background(), "u3", event.FriendRequest, event.FriendRequestPayload{RequestID: "r1"})

	// And the drop is reported as offline
	req.Len(telemetry, 1)
	delivery := (<-telemetry).Payload.(event.Delivery)
	req.Equal(domain.UserID("u3"), delivery.Target)
	req.Equal(event.Offline, delivery.Outcome)
	req.Empty(delivery.ConnectionID)
}

func TestRouter_Route_Online_Recipient(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	telemetry := make(chan event.Telemetry, 10)

	// Given u2 is connected on c9
	registry := NewRegistry()
	registry.Register("u2", "c9")
	router := NewRouter(log, registry, transport, telemetry)
	payload := event.PostActivityPayload{UserName: "Alice"}

	// Then exactly one delivery reaches c9 with the exact payload
	transport.EXPECT().
		Send(gomock.Any(), domain.ConnectionID("c9"), event.New(event.PostLiked, payload)).
		Return(nil).
		Times(1)

	// When a like is routed to u2
	router.Route(context.Background(), "u2", event.PostLiked, payload)

	delivery := (<-telemetry).Payload.(event.Delivery)
	req.Equal(event.Delivered, delivery.Outcome)
	req.Equal(domain.ConnectionID("c9"), delivery.ConnectionID)
	req.Equal(event.PostLiked, delivery.Event)
}

func TestRouter_Route_Transport_Failure_Is_Swallowed(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	telemetry := make(chan event.Telemetry, 10)

	registry := NewRegistry()
	registry.Register("u2", "c2")
	router := NewRouter(log, registry, transport, telemetry)

	// Given the connection is already gone
	transport.EXPECT().Send(gomock.Any(), domain.ConnectionID("c2"), gomock.Any()).
		Return(errors.ErrConnectionClosed).Times(1)

	// When an event is routed, the caller is not affected
	router.Route(context.Background(), "u2", event.FriendRemoved, event.UserRefPayload{UserID: "u1"})

	req.Equal(event.Failed, (<-telemetry).Payload.(event.Delivery).Outcome)
}

func TestRouter_Route_Uses_Latest_Connection(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)

	// Given u1 reconnected on c2 without closing c1
	registry := NewRegistry()
	registry.Register("u1", "c1")
	registry.Register("u1", "c2")
	router := NewRouter(log, registry, transport, nil)

	// Then only c2 receives the event
	transport.EXPECT().Send(gomock.Any(), domain.ConnectionID("c2"), gomock.Any()).Return(nil).Times(1)

	router.Route(context.Background(), "u1", event.FriendAccepted, event.UserSummary{ID: "u4"})
}

func TestRouter_Route_Full_Telemetry_Does_Not_Block(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)

	registry := NewRegistry()
	router := NewRouter(log, registry, transport, make(chan event.Telemetry))

	// Unbuffered and never drained: Route must still return
	router.Route(context.Background(), "u3", event.PostCommented, event.PostActivityPayload{UserName: "Bob"})
}
