package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DanishNadar/ttp-tracker/internal/enum"
)

const namespace = "ttp"

// Metrics holds every collector the tracker and the outreach commands report
type Metrics struct {
	registry *prometheus.Registry

	trackingEvents      *prometheus.CounterVec
	trackingStoreErrors prometheus.Counter
	trackingRejected    *prometheus.CounterVec
	emailsSent          prometheus.Counter
	rowsSkipped         *prometheus.CounterVec
	rowsOpened          prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		trackingEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "events_total",
			Help:      "Tracking events received, by type.",
		}, []string{"type"}),
		trackingStoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "store_errors_total",
			Help:      "Tracking events that could not be stored.",
		}),
		trackingRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "rejected_total",
			Help:      "Tracking requests rejected, by status code.",
		}, []string{"code"}),
		emailsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outreach",
			Name:      "emails_sent_total",
			Help:      "Outreach emails handed to the mail transport.",
		}),
		rowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outreach",
			Name:      "rows_skipped_total",
			Help:      "Scan rows skipped, by reason.",
		}, []string{"reason"}),
		rowsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "rows_opened_total",
			Help:      "Rows newly marked as opened.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TrackingEvent(eventType enum.TrackingEventType) {
	m.trackingEvents.WithLabelValues(eventType.String()).Inc()
}

func (m *Metrics) TrackingStoreError() {
	m.trackingStoreErrors.Inc()
}

func (m *Metrics) TrackingRejected(code string) {
	m.trackingRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) EmailSent() {
	m.emailsSent.Inc()
}

func (m *Metrics) RowSkipped(reason enum.SkipReason) {
	m.rowsSkipped.WithLabelValues(reason.String()).Inc()
}

func (m *Metrics) RowsOpened(n int) {
	m.rowsOpened.Add(float64(n))
}
