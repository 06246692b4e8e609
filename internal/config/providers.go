package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/fallback"
	"github.com/rsilvagit/job-searcher/internal/httpclient"
	"github.com/rsilvagit/job-searcher/internal/logger"
	"github.com/rsilvagit/job-searcher/internal/pacer"
	"github.com/rsilvagit/job-searcher/internal/pipeline"
	"github.com/rsilvagit/job-searcher/internal/scraper"
)

// BuildProviders turns the enabled provider declarations into pipeline
// providers. Every provider gets its own transport so pacing and retries
// of one site never delay another. rdb may be nil.
//
// A provider whose chain cannot be built (unknown adapter kind or dataset,
// no static dataset) is still returned; the run reports it as
// misconfigured and continues with the others. Only a failure to create
// the transport is returned as an error.
func (c *Config) BuildProviders(log *zap.Logger, datasets map[string]scraper.Dataset, rdb *redis.Client) ([]pipeline.Provider, error) {
	log = logger.OrNop(log)

	var providers []pipeline.Provider
	for _, pc := range c.EnabledProviders() {
		plog := logger.ForProvider(log, pc.Name)

		var fetcher scraper.Fetcher
		if len(pc.Chain) > 0 {
			client, err := c.newClient(pc.Name, plog, rdb)
			if err != nil {
				return nil, fmt.Errorf("provider %q: %w", pc.Name, err)
			}
			fetcher = client
		}

		chain := buildChain(pc, scraper.Deps{Fetcher: fetcher, Datasets: datasets})
		if chain.BuildErr != nil {
			plog.Warn("provider chain is invalid", zap.Error(chain.BuildErr))
		}
		providers = append(providers, pipeline.Provider{Name: pc.Name, Chain: chain})
	}
	return providers, nil
}

func buildChain(pc ProviderConfig, deps scraper.Deps) fallback.Chain {
	chain := fallback.Chain{Provider: pc.Name}
	for _, kind := range pc.Chain {
		a, err := scraper.Build(kind, deps)
		if err != nil {
			return fallback.Chain{Provider: pc.Name, BuildErr: err}
		}
		chain.Live = append(chain.Live, a)
	}
	if pc.Static != "" {
		a, err := scraper.Build(scraper.StaticPrefix+pc.Static, deps)
		if err != nil {
			return fallback.Chain{Provider: pc.Name, BuildErr: err}
		}
		chain.Static = a
	}
	return chain
}

func (c *Config) newClient(provider string, log *zap.Logger, rdb *redis.Client) (*httpclient.Client, error) {
	t := c.Transport
	local := pacer.NewLocal(t.MinDelay, t.MaxDelay)

	var p pacer.Pacer = local
	if rdb != nil {
		p = pacer.NewRedis(rdb, provider, local, log)
	}

	return httpclient.New(httpclient.Options{
		ProxyURL:    t.ProxyURL,
		MinDelay:    t.MinDelay,
		MaxDelay:    t.MaxDelay,
		Timeout:     t.Timeout,
		MaxAttempts: t.MaxAttempts,
		BaseBackoff: t.BaseBackoff,
		Pacer:       p,
		Logger:      log,
	})
}
