//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"presence-lab/domain"
	"presence-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the outbound side of one connection.
// Consume must not block: a full or closed sink returns an error instead.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// Transport is the send side of the connection layer.
type Transport interface {
	Send(ctx context.Context, connectionID domain.ConnectionID, e event.Event) error
	Broadcast(ctx context.Context, e event.Event)
}

type IRegistry interface {
	Register(userID domain.UserID, connectionID domain.ConnectionID)
	Lookup(userID domain.UserID) (domain.ConnectionID, bool)
	Unregister(connectionID domain.ConnectionID) bool
	Snapshot() []domain.UserID
}

type IRouter interface {
	Route(ctx context.Context, target domain.UserID, name event.Name, payload any)
}

type IBroadcaster interface {
	Announce(ctx context.Context)
	AnnounceTo(ctx context.Context, connectionID domain.ConnectionID)
}

// IEmitter is what domain producers are given.
// Emit is fire-and-forget and never fails because a recipient is offline.
type IEmitter interface {
	Emit(ctx context.Context, target domain.UserID, name event.Name, payload any)
	ResolveConnection(userID domain.UserID) (domain.ConnectionID, bool)
	OnlineUsers() []domain.UserID
}

// IConnectionHandler receives the transport notifications of one connection.
type IConnectionHandler interface {
	Connect(ctx context.Context, conn domain.Connection)
	HandleInbound(ctx context.Context, connectionID domain.ConnectionID, frame event.Frame)
	Disconnect(ctx context.Context, connectionID domain.ConnectionID)
}
