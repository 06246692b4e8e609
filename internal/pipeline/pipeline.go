// Package pipeline coordinates a search run: every enabled provider runs
// its fallback chain in its own worker, then all results are scored,
// filtered and aggregated once every worker has finished.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsilvagit/job-searcher/internal/aggregate"
	"github.com/rsilvagit/job-searcher/internal/fallback"
	"github.com/rsilvagit/job-searcher/internal/filter"
	"github.com/rsilvagit/job-searcher/internal/logger"
	"github.com/rsilvagit/job-searcher/internal/metrics"
	"github.com/rsilvagit/job-searcher/internal/model"
	"github.com/rsilvagit/job-searcher/internal/scoring"
)

// ErrNoProviders is returned when a run has no enabled provider.
var ErrNoProviders = errors.New("no providers enabled")

// Provider is one enabled provider with its adapter chain.
type Provider struct {
	Name  string
	Chain fallback.Chain
}

// Options are the per-run inputs besides the providers.
type Options struct {
	Query      model.Query
	Criteria   model.Criteria
	Filters    filter.Options
	MaxResults int
}

// ProviderReport tells how a provider's postings were obtained.
type ProviderReport struct {
	Provider string
	Status   model.Status
	Adapter  string
	Count    int
	Attempts []fallback.Attempt
	// Err is set when the provider was skipped, e.g. a *fallback.ConfigError.
	Err error
}

// Result is the output of a run.
type Result struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time

	Jobs    []model.Job
	Reports []ProviderReport

	Fetched   int
	Unscored  int
	Filter    filter.Step
	Aggregate aggregate.Stats
}

type Coordinator struct {
	orchestrator *fallback.Orchestrator
	scorer       *scoring.Scorer
	logger       *zap.Logger
	metrics      *metrics.Run

	now func() time.Time
}

func New(scorer *scoring.Scorer, log *zap.Logger, m *metrics.Run) *Coordinator {
	log = logger.OrNop(log)
	if scorer == nil {
		scorer = scoring.New(scoring.DefaultWeights(), log)
	}
	return &Coordinator{
		orchestrator: fallback.NewOrchestrator(log, m),
		scorer:       scorer,
		logger:       log,
		metrics:      m,
		now:          time.Now,
	}
}

// Run executes one search. Provider failures are recorded in the reports
// and never abort the run; only ErrNoProviders, a static adapter failure
// (fallback.ErrStaticFailed) or ctx ending are returned as errors.
func (c *Coordinator) Run(ctx context.Context, providers []Provider, opts Options) (*Result, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	order := make([]string, len(providers))
	seen := make(map[string]struct{}, len(providers))
	for i, p := range providers {
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("provider %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		order[i] = p.Name
	}

	res := &Result{
		RunID:   uuid.New(),
		Started: c.now(),
		Reports: make([]ProviderReport, len(providers)),
	}
	log := c.logger.With(zap.String(logger.FieldRunID, res.RunID.String()))
	log.Info("starting search",
		zap.Strings("providers", order),
		zap.Strings("terms", opts.Query.Terms),
		zap.Strings("locations", opts.Query.Locations),
	)

	// each worker owns its slot; Wait is the only synchronization point
	batches := make([][]model.Job, len(providers))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			chain := p.Chain
			chain.Provider = p.Name

			out, err := c.orchestrator.Run(gCtx, chain, opts.Query)
			res.Reports[i] = ProviderReport{
				Provider: p.Name,
				Status:   out.Status,
				Adapter:  out.Adapter,
				Count:    len(out.Jobs),
				Attempts: out.Attempts,
				Err:      err,
			}

			var cfgErr *fallback.ConfigError
			switch {
			case err == nil:
				batches[i] = out.Jobs
				log.Info("provider finished",
					zap.String(logger.FieldProvider, p.Name),
					zap.String("status", string(out.Status)),
					zap.String(logger.FieldAdapter, out.Adapter),
					zap.Int("count", len(out.Jobs)),
				)
				return nil
			case errors.As(err, &cfgErr):
				log.Error("skipping provider", zap.String(logger.FieldProvider, p.Name), zap.Error(err))
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Job
	for _, b := range batches {
		all = append(all, b...)
	}
	res.Fetched = len(all)
	c.metrics.Postings("fetched", len(all))

	scored, dropped := c.scorer.Annotate(all, opts.Criteria)
	res.Unscored = len(dropped)
	c.metrics.Postings("dropped", len(dropped))

	filtered, step := filter.Apply(scored, opts.Filters)
	res.Filter = step
	c.metrics.Postings("filtered", step.Dropped)
	log.Debug("filters applied",
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)

	res.Jobs, res.Aggregate = aggregate.AggregateWithStats(filtered, order, opts.MaxResults)
	c.metrics.Postings("duplicate", res.Aggregate.Duplicates)
	c.metrics.Postings("output", len(res.Jobs))

	res.Finished = c.now()
	c.metrics.RunFinished(res.Started, res.Finished)

	log.Info("search finished",
		zap.Int("fetched", res.Fetched),
		zap.Int("duplicates", res.Aggregate.Duplicates),
		zap.Int("results", len(res.Jobs)),
		zap.Duration("took", res.Finished.Sub(res.Started)),
	)
	return res, nil
}

// StatusCounts summarizes reports by status.
func (r *Result) StatusCounts() map[model.Status]int {
	counts := make(map[model.Status]int, 4)
	for _, rep := range r.Reports {
		counts[rep.Status]++
	}
	return counts
}
