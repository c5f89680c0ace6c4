package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"presence-lab/domain/event"
)

// Metrics owns a dedicated Prometheus registry so tests can build as many as they want.
type Metrics struct {
	registry       *prometheus.Registry
	deliveries     *prometheus.CounterVec
	onlineUsers    prometheus.Gauge
	workerRestarts prometheus.Counter
	channelLength  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "presence",
			Name:      "deliveries_total",
			Help:      "Routed events by wire name and outcome",
		}, []string{"event", "outcome"}),
		onlineUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "presence",
			Name:      "online_users",
			Help:      "Size of the last announced online set",
		}),
		workerRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "presence",
			Name:      "worker_restarts_total",
			Help:      "Workers restarted after a panic",
		}),
		channelLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "presence",
			Name:      "channel_length",
			Help:      "Sampled length of internal channels",
		}, []string{"channel"}),
	}
	m.registry.MustRegister(
		m.deliveries, m.onlineUsers, m.workerRestarts, m.channelLength,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// MetricsHandler feeds Prometheus and the monitoring totals from the telemetry stream.
type MetricsHandler struct {
	metrics    *Metrics
	monitoring *MonitoringManager
}

func NewMetricsHandler(metrics *Metrics, monitoring *MonitoringManager) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, monitoring: monitoring}
}

func (h MetricsHandler) Handle(t event.Telemetry) {
	switch payload := t.Payload.(type) {
	case event.Delivery:
		h.metrics.deliveries.WithLabelValues(string(payload.Event), string(payload.Outcome)).Inc()
		h.monitoring.IncrDelivery(payload.Outcome)
	case event.PresenceChanged:
		h.metrics.onlineUsers.Set(float64(payload.Online))
	case event.WorkerRestartedAfterPanic:
		h.metrics.workerRestarts.Inc()
		h.monitoring.IncrWorkerRestarts()
	case event.ChannelCapacity:
		h.metrics.channelLength.WithLabelValues(payload.ChannelName).Set(float64(payload.Length))
	}
}
