// Package config loads the run configuration through viper and turns the
// provider declarations into pipeline providers.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/rsilvagit/job-searcher/internal/filter"
	"github.com/rsilvagit/job-searcher/internal/model"
	"github.com/rsilvagit/job-searcher/internal/output"
	"github.com/rsilvagit/job-searcher/internal/scoring"
	"github.com/rsilvagit/job-searcher/internal/scraper"
)

// EnvPrefix prefixes environment overrides, e.g. JOB_SEARCHER_OUTPUT_DIR.
const EnvPrefix = "JOB_SEARCHER"

type Config struct {
	SearchTerms   []string            `mapstructure:"search_terms" validate:"dive,required"`
	Locations     []string            `mapstructure:"locations"`
	Filters       FiltersConfig       `mapstructure:"filters"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Transport     TransportConfig     `mapstructure:"transport"`
	Providers     []ProviderConfig    `mapstructure:"providers" validate:"dive"`
	Output        OutputConfig        `mapstructure:"output"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	MetricsFile   string              `mapstructure:"metrics_file"`
}

type FiltersConfig struct {
	PreferredKeywords []string `mapstructure:"preferred_keywords"`
	ExcludedKeywords  []string `mapstructure:"excluded_keywords"`
	BonusTerms        []string `mapstructure:"bonus_terms"`

	MinScore   float64 `mapstructure:"min_score" validate:"gte=0,lte=100"`
	MinSalary  int     `mapstructure:"min_salary" validate:"gte=0"`
	Experience string  `mapstructure:"experience"`
	WorkModel  string  `mapstructure:"work_model"`
	Region     string  `mapstructure:"region"`
	JobType    string  `mapstructure:"job_type"`
}

type ScoringConfig struct {
	Weights scoring.Weights `mapstructure:"weights"`
}

type TransportConfig struct {
	MinDelay    time.Duration `mapstructure:"min_delay" validate:"gte=0"`
	MaxDelay    time.Duration `mapstructure:"max_delay" validate:"gtefield=MinDelay"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	BaseBackoff time.Duration `mapstructure:"base_backoff" validate:"gte=0"`
	ProxyURL    string        `mapstructure:"proxy_url" validate:"omitempty,url"`
	// RedisURL enables cross-process pacing when set.
	RedisURL string `mapstructure:"redis_url" validate:"omitempty,url"`
}

// ProviderConfig declares one provider. Chain lists live adapter kinds,
// primary first; a trailing "static:<dataset>" entry or Static names the
// terminal static dataset.
type ProviderConfig struct {
	Name    string   `mapstructure:"name" validate:"required"`
	Enabled bool     `mapstructure:"enabled"`
	Chain   []string `mapstructure:"chain"`
	Static  string   `mapstructure:"static"`
}

type OutputConfig struct {
	MaxResults int      `mapstructure:"max_results" validate:"gte=0"`
	Formats    []string `mapstructure:"formats" validate:"dive,oneof=json csv markdown md html"`
	Dir        string   `mapstructure:"dir"`
}

type NotificationsConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`
	DiscordWebhook string `mapstructure:"discord_webhook" validate:"omitempty,url"`
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("search_terms", []string{"developer"})
	v.SetDefault("locations", []string{"Remote"})

	w := scoring.DefaultWeights()
	v.SetDefault("scoring.weights.search_title", w.SearchTitle)
	v.SetDefault("scoring.weights.search_description", w.SearchDescription)
	v.SetDefault("scoring.weights.preferred_title", w.PreferredTitle)
	v.SetDefault("scoring.weights.preferred_description", w.PreferredDescription)
	v.SetDefault("scoring.weights.excluded", w.Excluded)
	v.SetDefault("scoring.weights.bonus_title", w.BonusTitle)
	v.SetDefault("scoring.weights.bonus_description", w.BonusDescription)

	v.SetDefault("transport.min_delay", 2*time.Second)
	v.SetDefault("transport.max_delay", 5*time.Second)
	v.SetDefault("transport.timeout", 20*time.Second)
	v.SetDefault("transport.max_attempts", 3)
	v.SetDefault("transport.base_backoff", 2*time.Second)

	v.SetDefault("providers", DefaultProviders())

	v.SetDefault("output.max_results", 50)
	v.SetDefault("output.formats", []string{output.FormatJSON})
	v.SetDefault("output.dir", "job_results")
}

// DefaultProviders is used when the configuration declares none.
func DefaultProviders() []map[string]any {
	return []map[string]any{
		{"name": "remote", "enabled": true, "chain": []string{"remoteok", "weworkremotely"}, "static": "remote"},
		{"name": "games", "enabled": true, "chain": []string{"hitmarker", "remotegamejobs"}, "static": "gamedev"},
		{"name": "general", "enabled": true, "chain": []string{"indeed", "linkedin"}, "static": "mock"},
		{"name": "hackernews", "enabled": false, "chain": []string{"hackernews"}, "static": "remote"},
		{"name": "brazil", "enabled": false, "chain": []string{"gupy"}, "static": "mock"},
		{"name": "tech", "enabled": false, "chain": []string{"dice"}, "static": "mock"},
		{"name": "design", "enabled": false, "chain": []string{"authenticjobs"}, "static": "remote"},
		{"name": "ingame", "enabled": false, "chain": []string{"ingamejob"}, "static": "gamedev"},
		{"name": "flexjobs", "enabled": false, "static": "flexjobs"},
		{"name": "mock", "enabled": false, "static": "mock"},
	}
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	for i := range c.Providers {
		p := &c.Providers[i]
		p.Name = strings.ToLower(strings.TrimSpace(p.Name))
		for j := range p.Chain {
			p.Chain[j] = strings.ToLower(strings.TrimSpace(p.Chain[j]))
		}
		// a trailing static entry is the same as the Static field
		if n := len(p.Chain); n > 0 && scraper.IsStatic(p.Chain[n-1]) && p.Static == "" {
			p.Static = strings.TrimPrefix(p.Chain[n-1], scraper.StaticPrefix)
			p.Chain = p.Chain[:n-1]
		}
		p.Static = strings.ToLower(strings.TrimSpace(p.Static))
	}
}

var validate = validator.New()

// Validate checks field constraints and that provider names are unique.
// Adapter kinds and datasets are checked by BuildProviders for enabled
// providers only.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("invalid config: provider %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// EnabledProviders returns the enabled providers in declaration order.
func (c *Config) EnabledProviders() []ProviderConfig {
	var out []ProviderConfig
	for _, p := range c.Providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

// Criteria returns the scoring criteria of the run.
func (c *Config) Criteria() model.Criteria {
	return model.Criteria{
		SearchTerms:       c.SearchTerms,
		PreferredKeywords: c.Filters.PreferredKeywords,
		ExcludedKeywords:  c.Filters.ExcludedKeywords,
		BonusTerms:        c.Filters.BonusTerms,
	}
}

// Query returns what adapters fetch for: every search term in every location.
func (c *Config) Query() model.Query {
	return model.Query{Terms: c.SearchTerms, Locations: c.Locations}
}

// FilterOptions returns the hard filters of the run.
func (c *Config) FilterOptions() filter.Options {
	return filter.Options{
		MinScore:   c.Filters.MinScore,
		MinSalary:  c.Filters.MinSalary,
		Experience: c.Filters.Experience,
		WorkModel:  c.Filters.WorkModel,
		Region:     c.Filters.Region,
		JobType:    c.Filters.JobType,
	}
}
