// Package rest is the HTTP side of the node: the producer bridge,
// presence queries, diagnostics and the socket endpoint.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"presence-lab/auth"
	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/event"
	"presence-lab/observability"
)

const (
	defaultDeliveryLimit = 50
	maxDeliveryLimit     = 500
)

var validate = validator.New()

// EmitRequest lets a producer living in another process emit an event.
type EmitRequest struct {
	TargetID domain.UserID   `json:"targetId" validate:"required"`
	Event    event.Name      `json:"event" validate:"required"`
	Payload  json.RawMessage `json:"payload"`
}

type DeliveryView struct {
	Target       domain.UserID       `json:"target"`
	Event        event.Name          `json:"event"`
	ConnectionID domain.ConnectionID `json:"connectionId,omitempty"`
	Outcome      event.Outcome       `json:"outcome"`
	At           time.Time           `json:"at"`
}

// DeliveryReader is the read side of the delivery journal.
type DeliveryReader interface {
	Latest(limit int) ([]event.Delivery, error)
}

type Handlers struct {
	log        *slog.Logger
	emitter    contract.IEmitter
	journal    DeliveryReader
	monitoring *observability.MonitoringManager
	sessions   func() int
}

func NewHandlers(log *slog.Logger, emitter contract.IEmitter, journal DeliveryReader,
	monitoring *observability.MonitoringManager, sessions func() int) *Handlers {
	return &Handlers{
		log:        log,
		emitter:    emitter,
		journal:    journal,
		monitoring: monitoring,
		sessions:   sessions,
	}
}

// Routes mounts every endpoint. socket and metrics are served as given.
func (h *Handlers) Routes(socket, metrics http.Handler, jwtSecret string) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/socket", socket).Methods(http.MethodGet)
	r.Handle("/metrics", metrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/presence", h.OnlineUsers).Methods(http.MethodGet)
	api.HandleFunc("/presence/{userId}", h.Presence).Methods(http.MethodGet)

	emit := api.PathPrefix("/events").Subrouter()
	emit.Use(auth.BearerMiddleware(jwtSecret))
	emit.HandleFunc("", h.Emit).Methods(http.MethodPost)

	debug := r.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/deliveries", h.Deliveries).Methods(http.MethodGet)
	debug.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	return r
}

// Emit answers 202 once the request is valid. Whether the target is online
// is never part of the answer.
func (h *Handlers) Emit(w http.ResponseWriter, r *http.Request) {
	var body EmitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := validate.Struct(body); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !event.IsProducerName(body.Event) {
		h.writeError(w, http.StatusBadRequest, "unsupported event "+string(body.Event))
		return
	}

	var payload any
	if len(body.Payload) > 0 {
		payload = body.Payload
	}
	producer, _ := auth.UserIDFromContext(r.Context())
	h.log.Debug("Event emitted over REST", "producer", producer, "target", body.TargetID, "event", body.Event)
	h.emitter.Emit(r.Context(), body.TargetID, body.Event, payload)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"onlineUsers": h.emitter.OnlineUsers()})
}

func (h *Handlers) Presence(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(mux.Vars(r)["userId"])
	connectionID, online := h.emitter.ResolveConnection(userID)
	body := map[string]any{"userId": userID, "online": online}
	if online {
		body["connectionId"] = connectionID
	}
	h.writeJSON(w, http.StatusOK, body)
}

func (h *Handlers) Deliveries(w http.ResponseWriter, r *http.Request) {
	limit := defaultDeliveryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDeliveryLimit)
	}

	deliveries, err := h.journal.Latest(limit)
	if err != nil {
		h.log.Error("Journal read failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, lo.Map(deliveries, func(d event.Delivery, _ int) DeliveryView {
		return DeliveryView{
			Target:       d.Target,
			Event:        d.Event,
			ConnectionID: d.ConnectionID,
			Outcome:      d.Outcome,
			At:           d.At,
		}
	}))
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.monitoring.GetLatest(h.sessions(), len(h.emitter.OnlineUsers())))
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Debug("Response not written", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
