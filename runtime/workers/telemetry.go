package workers

import (
	"context"
	"log/slog"

	"presence-lab/domain/event"
)

// TelemetryWorker drains the telemetry channel through the handler chain.
type TelemetryWorker struct {
	log       *slog.Logger
	telemetry <-chan event.Telemetry
	handlers  []event.Handler
}

func NewTelemetryWorker(log *slog.Logger, telemetry <-chan event.Telemetry, handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:       log,
		telemetry: telemetry,
		handlers:  handlers,
	}
}

func (w TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry handling")
			return nil
		case t := <-w.telemetry:
			w.handle(t)
		}
	}
}

func (w TelemetryWorker) handle(t event.Telemetry) {
	for _, h := range w.handlers {
		h.Handle(t)
	}
}
