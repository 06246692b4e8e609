// Package fallback runs a provider's ordered chain of adapters: the
// primary live adapter, then alternates, then the static dataset. The
// static adapter guarantees every correctly configured provider yields
// postings even when every live site refuses service.
package fallback

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/metrics"
	"github.com/rsilvagit/job-searcher/internal/model"
	"github.com/rsilvagit/job-searcher/internal/scraper"
)

// State is a step of the chain state machine.
type State string

const (
	StateTryPrimary   State = "try_primary"
	StateTryAlternate State = "try_alternate"
	StateUseStatic    State = "use_static"
	StateDone         State = "done"
)

// ErrStaticFailed is returned when a static adapter fails. Static data is
// part of the program, so this is a defect rather than a site problem.
var ErrStaticFailed = errors.New("static adapter failed")

// ConfigError reports a chain that cannot guarantee a result.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q misconfigured: %s", e.Provider, e.Reason)
}

// Chain is the ordered adapter list of one provider. Live[0] is the primary.
type Chain struct {
	Provider string
	Live     []scraper.Adapter
	Static   scraper.Adapter

	// BuildErr is set when the declared chain could not be constructed,
	// e.g. an unknown adapter kind or dataset.
	BuildErr error
}

// Validate reports a *ConfigError when the chain could not be built or
// has no static adapter.
func (c Chain) Validate() error {
	if c.BuildErr != nil {
		return &ConfigError{Provider: c.Provider, Reason: c.BuildErr.Error()}
	}
	if c.Static == nil && len(c.Live) == 0 {
		return &ConfigError{Provider: c.Provider, Reason: "no adapters"}
	}
	if c.Static == nil {
		return &ConfigError{Provider: c.Provider, Reason: "no static adapter"}
	}
	return nil
}

// Attempt records one adapter invocation.
type Attempt struct {
	Adapter string
	State   State
	Count   int
	Err     error
}

// Outcome is the result of running one chain.
type Outcome struct {
	Provider string
	Jobs     []model.Job
	Status   model.Status
	// Adapter is the adapter whose postings were kept.
	Adapter  string
	Attempts []Attempt
}

// Orchestrator runs chains. It holds no per-run state and is safe for
// concurrent use across providers.
type Orchestrator struct {
	logger  *zap.Logger
	metrics *metrics.Run
}

func NewOrchestrator(logger *zap.Logger, m *metrics.Run) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger, metrics: m}
}

// Run walks the chain until an adapter succeeds. Any live failure advances
// to the next adapter; a live success, even with zero postings, ends the
// chain. Every returned posting carries the provider name in Source.
//
// Errors: *ConfigError for an unusable chain, ErrStaticFailed when the
// static adapter fails, or the context error when ctx ends first.
func (o *Orchestrator) Run(ctx context.Context, chain Chain, q model.Query) (Outcome, error) {
	out := Outcome{Provider: chain.Provider, Status: model.StatusEmpty}
	if err := chain.Validate(); err != nil {
		o.metrics.ChainOutcome(chain.Provider, string(model.StatusEmpty))
		return out, err
	}

	log := o.logger.With(zap.String("provider", chain.Provider))

	state, next := StateTryPrimary, 0
	for state != StateDone {
		switch state {
		case StateTryPrimary, StateTryAlternate:
			if next >= len(chain.Live) {
				state = StateUseStatic
				continue
			}
			adapter := chain.Live[next]
			next++

			jobs, err := o.fetch(ctx, chain.Provider, adapter, state, q, &out)
			if err == nil {
				out.Jobs = jobs
				out.Adapter = adapter.Name()
				out.Status = model.StatusLive
				if state == StateTryAlternate {
					out.Status = model.StatusFallback
				}
				state = StateDone
				continue
			}

			if ctxErr := ctx.Err(); ctxErr != nil {
				o.metrics.ChainOutcome(chain.Provider, string(model.StatusEmpty))
				return out, ctxErr
			}

			log.Warn("adapter failed, falling back",
				zap.String("adapter", adapter.Name()),
				zap.String("state", string(state)),
				zap.String("kind", metrics.Outcome(err)),
				zap.Error(err),
			)
			state = StateTryAlternate

		case StateUseStatic:
			jobs, err := o.fetch(ctx, chain.Provider, chain.Static, state, q, &out)
			if err != nil {
				o.metrics.ChainOutcome(chain.Provider, string(model.StatusEmpty))
				return out, fmt.Errorf("provider %q: %w: %w", chain.Provider, ErrStaticFailed, err)
			}
			if len(chain.Live) > 0 {
				log.Warn("all live adapters failed, serving static data",
					zap.String("adapter", chain.Static.Name()),
					zap.Int("count", len(jobs)),
				)
			}
			out.Jobs = jobs
			out.Adapter = chain.Static.Name()
			out.Status = model.StatusStatic
			state = StateDone
		}
	}

	if len(out.Jobs) == 0 {
		out.Status = model.StatusEmpty
	}
	for i := range out.Jobs {
		out.Jobs[i].Source = chain.Provider
	}

	o.metrics.ChainOutcome(chain.Provider, string(out.Status))
	log.Debug("chain finished",
		zap.String("status", string(out.Status)),
		zap.String("adapter", out.Adapter),
		zap.Int("count", len(out.Jobs)),
	)
	return out, nil
}

func (o *Orchestrator) fetch(ctx context.Context, provider string, a scraper.Adapter, state State, q model.Query, out *Outcome) ([]model.Job, error) {
	jobs, err := a.Fetch(ctx, q)
	o.metrics.FetchAttempt(provider, a.Name(), err)
	out.Attempts = append(out.Attempts, Attempt{
		Adapter: a.Name(),
		State:   state,
		Count:   len(jobs),
		Err:     err,
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
