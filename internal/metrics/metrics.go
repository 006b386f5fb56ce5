// Package metrics provides the Prometheus metrics for attendance matching and
// alert evaluation.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for check-in attempts.
const (
	OutcomeRecorded   = "recorded"
	OutcomeSuppressed = "suppressed"
	OutcomeUnknown    = "unknown"
	OutcomeNoFace     = "no_face"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

// Metrics contains every rollcall collector.
type Metrics struct {
	CheckInsTotal       *prometheus.CounterVec   // check-in attempts by method and outcome
	MatchDistance       prometheus.Histogram     // minimum distance of every resolved sample
	MatchConfidence     prometheus.Histogram     // confidence of accepted matches
	AmbiguousMatches    prometheus.Counter       // matches decided by tie-break
	DetectorDuration    *prometheus.HistogramVec // detector latency by model
	DetectorErrors      *prometheus.CounterVec   // detector failures by model
	RegistrySize        prometheus.Gauge         // enrolled faces
	AlertsActive        *prometheus.GaugeVec     // alerts in the latest evaluation by kind and severity
	AlertEvaluations    prometheus.Counter       // completed evaluation passes
	AlertEvalDuration   prometheus.Histogram     // evaluation pass latency
	NotificationsTotal  *prometheus.CounterVec   // alert notifications by channel and status
	HTTPRequestsTotal   *prometheus.CounterVec   // API requests by method, route and status
	HTTPRequestDuration *prometheus.HistogramVec // API latency by method and route

	collectors []prometheus.Collector
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register rollcall metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.CheckInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_checkins_total",
			Help: "Check-in attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	m.MatchDistance = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollcall_match_distance",
		Help:    "Minimum embedding distance of resolved samples",
		Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 1.0, 1.5, 2.0},
	})

	m.MatchConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollcall_match_confidence",
		Help:    "Confidence of accepted face matches",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	m.AmbiguousMatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_ambiguous_matches_total",
		Help: "Matches where several candidates tied at the minimum distance",
	})

	m.DetectorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollcall_detector_duration_seconds",
			Help:    "Face detector latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"model"},
	)

	m.DetectorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_detector_errors_total",
			Help: "Face detector failures",
		},
		[]string{"model"},
	)

	m.RegistrySize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rollcall_registry_faces",
		Help: "Number of enrolled face records seen by the last match",
	})

	m.AlertsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rollcall_alerts_active",
			Help: "Alerts produced by the latest evaluation pass",
		},
		[]string{"kind", "severity"},
	)

	m.AlertEvaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_alert_evaluations_total",
		Help: "Completed alert evaluation passes",
	})

	m.AlertEvalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollcall_alert_evaluation_duration_seconds",
		Help:    "Duration of an alert evaluation pass over every employee",
		Buckets: prometheus.DefBuckets,
	})

	m.NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_alert_notifications_total",
			Help: "Alert notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rollcall_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rollcall_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.collectors = []prometheus.Collector{
		m.CheckInsTotal,
		m.MatchDistance,
		m.MatchConfidence,
		m.AmbiguousMatches,
		m.DetectorDuration,
		m.DetectorErrors,
		m.RegistrySize,
		m.AlertsActive,
		m.AlertEvaluations,
		m.AlertEvalDuration,
		m.NotificationsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// The Record helpers are nil-safe so services can run without metrics.

// RecordCheckIn counts one check-in attempt.
func (m *Metrics) RecordCheckIn(method, outcome string) {
	if m == nil {
		return
	}
	m.CheckInsTotal.WithLabelValues(method, outcome).Inc()
}

// RecordMatch observes a resolved sample.
func (m *Metrics) RecordMatch(distance, confidence float64, known, ambiguous bool, registrySize int) {
	if m == nil {
		return
	}
	m.MatchDistance.Observe(distance)
	if known {
		m.MatchConfidence.Observe(confidence)
	}
	if ambiguous {
		m.AmbiguousMatches.Inc()
	}
	m.RegistrySize.Set(float64(registrySize))
}

// RecordDetection observes one detector call.
func (m *Metrics) RecordDetection(model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DetectorDuration.WithLabelValues(model).Observe(d.Seconds())
	if err != nil {
		m.DetectorErrors.WithLabelValues(model).Inc()
	}
}

// RecordEvaluation publishes the alert counts of a finished pass.
func (m *Metrics) RecordEvaluation(d time.Duration, counts map[[2]string]int) {
	if m == nil {
		return
	}
	m.AlertEvaluations.Inc()
	m.AlertEvalDuration.Observe(d.Seconds())
	m.AlertsActive.Reset()
	for key, n := range counts {
		m.AlertsActive.WithLabelValues(key[0], key[1]).Set(float64(n))
	}
}

// RecordNotification counts one alert delivery attempt.
func (m *Metrics) RecordNotification(channel, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordHTTPRequest observes one API request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, fmt.Sprint(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
