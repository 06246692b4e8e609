package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/job-searcher/internal/httpclient"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeBlocked, Outcome(httpclient.Blocked("u", "captcha")))
	assert.Equal(t, OutcomeTransient, Outcome(httpclient.Transient("u", "timeout", nil)))
	assert.Equal(t, OutcomeError, Outcome(errors.New("parse")))
}

func TestRun_Counters(t *testing.T) {
	m := New()

	m.FetchAttempt("games", "hitmarker", httpclient.Blocked("u", "rate limited"))
	m.FetchAttempt("games", "static:gamedev", nil)
	m.ChainOutcome("games", "static")
	m.Postings("output", 3)
	m.Postings("output", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchAttempts.WithLabelValues("games", "hitmarker", OutcomeBlocked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchAttempts.WithLabelValues("games", "static:gamedev", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chainOutcomes.WithLabelValues("games", "static")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.postings.WithLabelValues("output")))
}

func TestRun_NilIsNoop(t *testing.T) {
	var m *Run

	assert.NotPanics(t, func() {
		m.FetchAttempt("p", "a", nil)
		m.ChainOutcome("p", "live")
		m.Postings("output", 1)
		m.RunFinished(time.Now(), time.Now())
	})
	assert.NoError(t, m.WriteFile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, m.Registry())
}

func TestRun_WriteFile(t *testing.T) {
	m := New()
	m.ChainOutcome("remote", "live")
	started := time.Now().Add(-3 * time.Second)
	m.RunFinished(started, time.Now())

	path := filepath.Join(t.TempDir(), "job_searcher.prom")
	require.NoError(t, m.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `job_searcher_provider_results_total{provider="remote",status="live"} 1`)
	assert.Contains(t, string(raw), "job_searcher_run_duration_seconds_count 1")
}
