package event

import (
	"time"

	"presence-lab/domain"
)

type Type string

const (
	DeliveryType            Type = "DELIVERY"
	PresenceChangedType     Type = "PRESENCE_CHANGED"
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
)

// Telemetry is a technical event. It never reaches a client.
type Telemetry struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func NewTelemetry(t Type, payload any) Telemetry {
	return Telemetry{Type: t, CreatedAt: time.Now().UTC(), Payload: payload}
}

type Outcome string

const (
	Delivered Outcome = "delivered"
	Offline   Outcome = "offline"
	Failed    Outcome = "failed"
)

// Delivery is the result of routing one event to one user.
type Delivery struct {
	Target       domain.UserID
	Event        Name
	ConnectionID domain.ConnectionID
	Outcome      Outcome
	At           time.Time
}

type PresenceChanged struct {
	Online int
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}
