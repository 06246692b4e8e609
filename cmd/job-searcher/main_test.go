package main

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/config"
	"github.com/rsilvagit/job-searcher/internal/output"
	"github.com/rsilvagit/job-searcher/internal/scraper"
)

func testSearcher(t *testing.T, yaml string) *searcher {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))

	cfg, err := config.Load(v)
	require.NoError(t, err)

	datasets, err := scraper.LoadDatasets()
	require.NoError(t, err)

	return &searcher{cfg: cfg, log: zap.NewNop(), datasets: datasets, quiet: true}
}

func TestSearcherRun_StaticProviders(t *testing.T) {
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "job_searcher.prom")

	s := testSearcher(t, `
search_terms: [unity]
filters:
  bonus_terms: [unity]
providers:
  - name: games
    enabled: true
    static: gamedev
  - name: flexjobs
    enabled: true
    static: flexjobs
output:
  formats: [json, csv]
  dir: `+dir+`
metrics_file: `+metricsFile+`
`)

	require.NoError(t, s.Run(context.Background()))

	files, err := filepath.Glob(filepath.Join(dir, "jobs_*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `job_searcher_provider_results_total{provider="games",status="static"} 1`)
}

func TestSearcherRun_NoProviders(t *testing.T) {
	s := testSearcher(t, "providers:\n  - name: off\n    static: mock\n")

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers enabled")
}

func TestSearcherWriters(t *testing.T) {
	s := testSearcher(t, `
output:
  formats: [markdown]
notifications:
  telegram_token: token
  telegram_chat_id: "42"
  discord_webhook: https://discord.example/hook
`)

	writers, err := s.writers()
	require.NoError(t, err)
	require.Len(t, writers, 3)
	assert.IsType(t, &output.FileWriter{}, writers[0])
	assert.IsType(t, &output.TelegramWriter{}, writers[1])
	assert.IsType(t, &output.DiscordWriter{}, writers[2])

	s.noSave = true
	s.quiet = false
	writers, err = s.writers()
	require.NoError(t, err)
	require.Len(t, writers, 3)
	assert.IsType(t, &output.ConsolePrinter{}, writers[0])
}

func TestSchedule_InvalidSpec(t *testing.T) {
	s := &searcher{log: zap.NewNop()}

	err := schedule(context.Background(), s, "every now and then", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron spec")
}

func TestSchedule_StopsWithContext(t *testing.T) {
	s := testSearcher(t, "providers:\n  - name: mock\n    enabled: true\n    static: mock\noutput:\n  formats: []\n")
	s.noSave = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, schedule(ctx, s, "@every 1h", false))
}

func TestScheduledJob_SkipsWhileRunning(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	search := func(context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}

	log := zap.NewNop()
	job := scheduledJob(context.Background(), log, cronLogger{log.Sugar()}, search)

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// a tick during the first run returns at once without searching
	job.Run()
	assert.Equal(t, int32(1), calls.Load())

	close(release)
	<-done
}

func TestRunSchedule_WaitsForImmediateRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var finished atomic.Bool
	search := func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		return errors.New("interrupted")
	}

	require.NoError(t, runSchedule(ctx, zap.NewNop(), "@every 1h", true, search))

	assert.True(t, finished.Load())
}
