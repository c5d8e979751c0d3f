// Package metrics exposes client-side Prometheus instrumentation: REST
// calls, WebSocket lifecycle, token refreshes and observed sessions.
//
// All methods are safe on a nil *Metrics so callers never branch on
// whether metrics are enabled.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-go/voicedesk/pkg/live"
)

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
)

// Metrics holds all Prometheus metrics for the client.
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSState          *prometheus.GaugeVec
	WSFramesTotal    *prometheus.CounterVec
	WSReconnectTotal *prometheus.CounterVec

	// Auth metrics
	TokenRefreshTotal *prometheus.CounterVec

	ActiveSessions prometheus.Gauge
}

// New creates a Metrics instance with every collector registered on a
// private registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "voicedesk"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Backend API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	wsState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_state",
			Help:      "1 for the current state of each WebSocket stream",
		},
		[]string{"stream", "state"},
	)

	wsFrames := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_frames_total",
			Help:      "Total inbound WebSocket frames by type",
		},
		[]string{"stream", "type"},
	)

	wsReconnects := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_reconnects_total",
			Help:      "Total WebSocket reconnect attempts",
		},
		[]string{"stream"},
	)

	tokenRefresh := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Total access token refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	activeSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Active sessions reported by the last poll",
		},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		wsState,
		wsFrames,
		wsReconnects,
		tokenRefresh,
		activeSessions,
	)

	return &Metrics{
		registry:          registry,
		RequestsTotal:     requestsTotal,
		RequestDuration:   requestDuration,
		WSState:           wsState,
		WSFramesTotal:     wsFrames,
		WSReconnectTotal:  wsReconnects,
		TokenRefreshTotal: tokenRefresh,
		ActiveSessions:    activeSessions,
	}
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request. status 0 means the request
// failed before a response arrived.
func (m *Metrics) RecordRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRefresh records one token refresh attempt.
func (m *Metrics) RecordRefresh(outcome string) {
	if m == nil {
		return
	}
	m.TokenRefreshTotal.WithLabelValues(outcome).Inc()
}

// RecordFrame records one decoded inbound frame.
func (m *Metrics) RecordFrame(stream, frameType string) {
	if m == nil {
		return
	}
	m.WSFramesTotal.WithLabelValues(stream, frameType).Inc()
}

// SetActiveSessions records the size of the latest active-sessions poll.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ConnState implements live.Observer.
func (m *Metrics) ConnState(stream string, state live.State) {
	if m == nil {
		return
	}
	for _, s := range live.States {
		value := 0.0
		if s == state {
			value = 1
		}
		m.WSState.WithLabelValues(stream, string(s)).Set(value)
	}
}

// Reconnect implements live.Observer.
func (m *Metrics) Reconnect(stream string) {
	if m == nil {
		return
	}
	m.WSReconnectTotal.WithLabelValues(stream).Inc()
}

var _ live.Observer = (*Metrics)(nil)
