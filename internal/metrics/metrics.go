// Package metrics holds the Prometheus counters of a search run.
// A nil *Run is valid and records nothing.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rsilvagit/job-searcher/internal/httpclient"
)

const namespace = "job_searcher"

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeBlocked   = "blocked"
	OutcomeTransient = "transient"
	OutcomeError     = "error"
)

// Run collects the metrics of one or more search runs on a private registry.
type Run struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	chainOutcomes *prometheus.CounterVec
	postings      *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
}

func New() *Run {
	m := &Run{
		registry: prometheus.NewRegistry(),

		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_fetches_total",
			Help:      "Adapter fetches by provider, adapter and outcome",
		}, []string{"provider", "adapter", "outcome"}),

		chainOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_results_total",
			Help:      "Provider chain results by status",
		}, []string{"provider", "status"}),

		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_total",
			Help:      "Postings seen per pipeline stage",
		}, []string{"stage"}), // "fetched" / "dropped" / "filtered" / "duplicate" / "output"

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Search run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.fetchAttempts, m.chainOutcomes, m.postings, m.runDuration, m.lastRun)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Run) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// FetchAttempt records one adapter invocation.
func (m *Run) FetchAttempt(provider, adapter string, err error) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(provider, adapter, Outcome(err)).Inc()
}

// ChainOutcome records the final status of a provider chain.
func (m *Run) ChainOutcome(provider, status string) {
	if m == nil {
		return
	}
	m.chainOutcomes.WithLabelValues(provider, status).Inc()
}

// Postings adds n to the counter of the given stage.
func (m *Run) Postings(stage string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.postings.WithLabelValues(stage).Add(float64(n))
}

// RunFinished records the duration of a run that started at started.
func (m *Run) RunFinished(started, finished time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Observe(finished.Sub(started).Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteFile writes all metrics to path in the node-exporter textfile format.
func (m *Run) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}

// Outcome maps a fetch error to its metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, httpclient.ErrBlocked):
		return OutcomeBlocked
	case errors.Is(err, httpclient.ErrTransient):
		return OutcomeTransient
	default:
		return OutcomeError
	}
}
