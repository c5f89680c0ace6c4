package runtime

import (
	"log/slog"

	"presence-lab/domain/event"
)

// publish never blocks the caller: telemetry is sampled, losing one is fine.
func publish(log *slog.Logger, telemetry chan<- event.Telemetry, t event.Telemetry) {
	if telemetry == nil {
		return
	}
	select {
	case telemetry <- t:
	default:
		log.Debug("Observability telemetry event lost", "type", t.Type)
	}
}
