// Package metrics provides Prometheus metrics for the engage-api service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engage_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// AuditEvents counts audit events by name.
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_audit_events_total",
			Help: "Total number of audit events emitted",
		},
		[]string{"event"},
	)

	// AuditEventsDropped counts events discarded because the audit buffer was full.
	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engage_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to a full buffer",
		},
	)

	// ActiveCallSessions tracks call sessions held in memory.
	ActiveCallSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engage_active_call_sessions",
			Help: "Number of call sessions currently held",
		},
	)

	// CallSessionsEvicted counts call sessions removed by the janitor.
	CallSessionsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_call_sessions_evicted_total",
			Help: "Total number of call sessions evicted",
		},
		[]string{"reason"},
	)

	// ConversationSessionsEvicted counts conversation sessions removed for idleness or capacity.
	ConversationSessionsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_conversation_sessions_evicted_total",
			Help: "Total number of conversation sessions evicted",
		},
		[]string{"reason"},
	)

	// CallbackEffects counts provider status callbacks by outcome.
	CallbackEffects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engage_call_status_callbacks_total",
			Help: "Total number of provider status callbacks by effect",
		},
		[]string{"effect"},
	)

	// CollaboratorDuration tracks outbound calls to external providers.
	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engage_collaborator_request_duration_seconds",
			Help:    "Duration of requests to external providers",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"provider", "operation", "outcome"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordAuditEvent counts an emitted audit event.
func RecordAuditEvent(name string) {
	AuditEvents.WithLabelValues(name).Inc()
}

// RecordAuditDropped counts a dropped audit event.
func RecordAuditDropped() {
	AuditEventsDropped.Inc()
}

// RecordCallEvicted counts a janitor eviction.
func RecordCallEvicted(reason string) {
	CallSessionsEvicted.WithLabelValues(reason).Inc()
}

// RecordConversationEvicted counts a conversation eviction.
func RecordConversationEvicted(reason string) {
	ConversationSessionsEvicted.WithLabelValues(reason).Inc()
}

// RecordCallbackEffect counts a reconciled provider callback.
func RecordCallbackEffect(effect string) {
	CallbackEffects.WithLabelValues(effect).Inc()
}

// ObserveCollaborator records the latency of a provider request.
func ObserveCollaborator(provider, operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CollaboratorDuration.WithLabelValues(provider, operation, outcome).Observe(time.Since(start).Seconds())
}
