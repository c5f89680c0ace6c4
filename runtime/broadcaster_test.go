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
	"presence-lab/mocks"
)

func TestBroadcaster_Announce_Full_Snapshot(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	telemetry := make(chan event.Telemetry, 10)

	// Given two users are online
	registry := NewRegistry()
	registry.Register("u2", "c2")
	registry.Register("u1", "c1")
	broadcaster := NewBroadcaster(log, registry, transport, telemetry)

	// Then every connection receives the sorted snapshot
	transport.EXPECT().
		Broadcast(gomock.Any(), event.New(event.GetOnlineUsers, []domain.UserID{"u1", "u2"})).
		Times(1)

	// When the online set is announced
	broadcaster.Announce(context.Background())

	t1 := <-telemetry
	req.Equal(event.PresenceChangedType, t1.Type)
	req.Equal(event.PresenceChanged{Online: 2}, t1.Payload)
}

func TestBroadcaster_Announce_Empty_Registry(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)

	broadcaster := NewBroadcaster(log, NewRegistry(), transport, nil)

	transport.EXPECT().
		Broadcast(gomock.Any(), event.New(event.GetOnlineUsers, []domain.UserID{})).
		Times(1)

	broadcaster.Announce(context.Background())
}

func TestBroadcaster_AnnounceTo_One_Connection(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)

	broadcaster := NewBroadcaster(log, registry, transport, nil)

	// Given u1 is online
	registry.EXPECT().Snapshot().Return([]domain.UserID{"u1"}).Times(1)

	// Then only the anonymous connection receives the snapshot
	transport.EXPECT().
		Send(gomock.Any(), domain.ConnectionID("anon"), event.New(event.GetOnlineUsers, []domain.UserID{"u1"})).
		Return(nil).
		Times(1)
	transport.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Times(0)

	broadcaster.AnnounceTo(context.Background(), "anon")
}

func TestBroadcaster_Announces_In_Mutation_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	transport := mocks.NewMockTransport(ctrl)
	registry := NewRegistry()
	broadcaster := NewBroadcaster(log, registry, transport, nil)

	var seen [][]domain.UserID
	transport.EXPECT().Broadcast(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e event.Event) {
			seen = append(seen, e.Payload.([]domain.UserID))
		}).
		Times(3)

	// When the registry changes three times, each followed by an announcement
	registry.Register("u1", "c1")
	broadcaster.Announce(context.Background())
	registry.Register("u2", "c2")
	broadcaster.Announce(context.Background())
	registry.Unregister("c1")
	broadcaster.Announce(context.Background())

	// Then snapshots reach the transport in that order
	req.Equal([][]domain.UserID{{"u1"}, {"u1", "u2"}, {"u2"}}, seen)
}
