package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ActionsTotal.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeQueried   = "queried"
)

// Metrics holds the record handler's Prometheus collectors.
type Metrics struct {
	ActionsTotal        *prometheus.CounterVec
	ActionDuration      *prometheus.HistogramVec
	SignaturesConsumed  prometheus.Counter
	ExternalFetch       *prometheus.HistogramVec
	EventPublishFailure prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ansdns_actions_total",
			Help: "Total number of evaluated actions by function and outcome",
		}, []string{"function", "outcome"}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ansdns_action_duration_seconds",
			Help:    "Duration of action evaluation including external lookups",
			Buckets: prometheus.DefBuckets,
		}, []string{"function"}),
		SignaturesConsumed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ansdns_signatures_consumed_total",
			Help: "Total number of signatures committed to the replay log",
		}),
		ExternalFetch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ansdns_external_fetch_duration_seconds",
			Help:    "Duration of molecule and EXM lookups",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service", "status"}),
		EventPublishFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "ansdns_event_publish_failures_total",
			Help: "Total number of committed actions whose events could not be published",
		}),
	}
}

func (m *Metrics) ObserveAction(function, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(function, outcome).Inc()
	m.ActionDuration.WithLabelValues(function).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSignaturesConsumed() {
	if m == nil {
		return
	}
	m.SignaturesConsumed.Inc()
}

func (m *Metrics) ObserveFetch(service string, err error, start time.Time) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ExternalFetch.WithLabelValues(service, status).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementEventPublishFailures() {
	if m == nil {
		return
	}
	m.EventPublishFailure.Inc()
}
