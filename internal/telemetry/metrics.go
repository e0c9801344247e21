// Package telemetry exposes the service's Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "neuroscreen"

// Metrics holds every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	SessionsStarted     prometheus.Counter
	SessionsFinished    *prometheus.CounterVec
	SessionsExpired     prometheus.Counter
	SessionsActive      prometheus.Gauge
	SamplesIngested     *prometheus.CounterVec
	SamplesEvicted      *prometheus.CounterVec
	Responses           *prometheus.CounterVec
	AdaptiveActions     *prometheus.CounterVec
	AdvisorFallbacks    prometheus.Counter
	LLMRetries          *prometheus.CounterVec
	LLMFallbacks        *prometheus.CounterVec
	InvariantViolations *prometheus.CounterVec
	Reports             *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Screening sessions started.",
		}),
		SessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Screening sessions that reached a terminal status.",
		}, []string{"status"}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Idle sessions evicted by the sweeper.",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently in the active status.",
		}),
		SamplesIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_ingested_total",
			Help:      "Modality samples ingested.",
		}, []string{"modality"}),
		SamplesEvicted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_evicted_total",
			Help:      "Modality samples evicted from full windows.",
		}, []string{"modality"}),
		Responses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Question responses recorded.",
		}, []string{"category"}),
		AdaptiveActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adaptive_actions_total",
			Help:      "Adaptive selector actions taken.",
		}, []string{"action"}),
		AdvisorFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisor_fallbacks_total",
			Help:      "Advisor calls that failed or timed out and fell back to continue.",
		}),
		LLMRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_retries_total",
			Help:      "LLM requests retried after a transient error, by failure kind.",
		}, []string{"kind"}),
		LLMFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_fallbacks_total",
			Help:      "LLM calls that degraded to a neutral result, by purpose and failure kind.",
		}, []string{"purpose", "kind"}),
		InvariantViolations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Invariant violations clamped in production.",
		}, []string{"source"}),
		Reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports generated, by risk level.",
		}, []string{"risk"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionFinished(status string) {
	if m == nil {
		return
	}
	m.SessionsFinished.WithLabelValues(status).Inc()
	m.SessionsActive.Dec()
}

func (m *Metrics) SessionExpired() {
	if m == nil {
		return
	}
	m.SessionsExpired.Inc()
}

func (m *Metrics) SampleIngested(modality string, evicted int) {
	if m == nil {
		return
	}
	m.SamplesIngested.WithLabelValues(modality).Inc()
	if evicted > 0 {
		m.SamplesEvicted.WithLabelValues(modality).Add(float64(evicted))
	}
}

func (m *Metrics) ResponseRecorded(category, action string, fallback bool) {
	if m == nil {
		return
	}
	m.Responses.WithLabelValues(category).Inc()
	m.AdaptiveActions.WithLabelValues(action).Inc()
	if fallback {
		m.AdvisorFallbacks.Inc()
	}
}

func (m *Metrics) LLMRetry(kind string) {
	if m == nil {
		return
	}
	m.LLMRetries.WithLabelValues(kind).Inc()
}

func (m *Metrics) LLMFallback(purpose, kind string) {
	if m == nil {
		return
	}
	m.LLMFallbacks.WithLabelValues(purpose, kind).Inc()
}

func (m *Metrics) InvariantViolation(source string) {
	if m == nil {
		return
	}
	m.InvariantViolations.WithLabelValues(source).Inc()
}

func (m *Metrics) ReportGenerated(risk string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(risk).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, code string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, code).Observe(seconds)
}
