package observability

import (
	"log/slog"

	"presence-lab/domain/event"
	"presence-lab/errors"
)

// DeliveryRecorder is the write side of the delivery journal.
type DeliveryRecorder interface {
	Record(d event.Delivery) error
}

// JournalHandler persists routing outcomes for diagnostics.
type JournalHandler struct {
	log      *slog.Logger
	recorder DeliveryRecorder
}

func NewJournalHandler(log *slog.Logger, recorder DeliveryRecorder) *JournalHandler {
	return &JournalHandler{log: log, recorder: recorder}
}

func (h JournalHandler) Handle(t event.Telemetry) {
	switch t.Type {
	case event.DeliveryType:
		d, ok := t.Payload.(event.Delivery)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		if err := h.recorder.Record(d); err != nil {
			h.log.Warn("Delivery not journaled", "target", d.Target, "event", d.Event, "error", err)
		}
	}
}
