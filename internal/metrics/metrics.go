package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes recorded in wingo_fetch_total.
const (
	OutcomeOK        = "ok"
	OutcomeDiscarded = "discarded" // succeeded but superseded under issue-order commits
)

// FetchMetrics collects Prometheus metrics for the predict poll loop.
type FetchMetrics struct {
	fetchTotal     *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	inFlight       prometheus.Gauge
	lastCommitTime prometheus.Gauge
}

// NewFetchMetrics registers the fetch metrics on reg. A nil reg leaves them
// unregistered, which is what tests that don't scrape want.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	factory := promauto.With(reg)
	return &FetchMetrics{
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wingo_fetch_total",
				Help: "Predict fetches completed, by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wingo_fetch_duration_seconds",
				Help:    "Predict fetch round-trip time in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wingo_fetch_in_flight",
				Help: "Predict fetches currently outstanding",
			},
		),
		lastCommitTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wingo_last_commit_timestamp_seconds",
				Help: "Unix time of the last committed prediction",
			},
		),
	}
}

// RecordFetch records one completed fetch.
func (m *FetchMetrics) RecordFetch(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(took.Seconds())
}

// SetInFlight publishes the number of outstanding fetches.
func (m *FetchMetrics) SetInFlight(n int) {
	if m == nil {
		return
	}
	m.inFlight.Set(float64(n))
}

// RecordCommit marks the time of a successful commit.
func (m *FetchMetrics) RecordCommit(at time.Time) {
	if m == nil {
		return
	}
	m.lastCommitTime.Set(float64(at.Unix()))
}

// FetchCount returns the counter for one outcome, for tests and status output.
func (m *FetchMetrics) FetchCount(outcome string) prometheus.Counter {
	return m.fetchTotal.WithLabelValues(outcome)
}
