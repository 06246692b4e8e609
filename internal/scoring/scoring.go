// Package scoring assigns each posting a relevance score in [0, 100].
package scoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rsilvagit/job-searcher/internal/model"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Weights are the per-term contributions of each criteria set.
type Weights struct {
	SearchTitle          float64 `mapstructure:"search_title"`
	SearchDescription    float64 `mapstructure:"search_description"`
	PreferredTitle       float64 `mapstructure:"preferred_title"`
	PreferredDescription float64 `mapstructure:"preferred_description"`
	Excluded             float64 `mapstructure:"excluded"`
	BonusTitle           float64 `mapstructure:"bonus_title"`
	BonusDescription     float64 `mapstructure:"bonus_description"`
}

func DefaultWeights() Weights {
	return Weights{
		SearchTitle:          10,
		SearchDescription:    5,
		PreferredTitle:       8,
		PreferredDescription: 4,
		Excluded:             -20,
		BonusTitle:           25,
		BonusDescription:     12,
	}
}

// ScoringError marks a posting that cannot be scored.
type ScoringError struct {
	Job    model.Job
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("cannot score posting %q from %s: %s", e.Job.URL, e.Job.Source, e.Reason)
}

type Scorer struct {
	weights Weights
	logger  *zap.Logger
}

func New(weights Weights, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{weights: weights, logger: logger}
}

// Score is total and deterministic. Each distinct term counts once per
// field no matter how often it occurs, and the result is clamped to
// [MinScore, MaxScore]. Empty criteria score 0.
func (s *Scorer) Score(job model.Job, c model.Criteria) float64 {
	c = c.Normalize()
	// same normalization as the terms, so "Unity  Developer" matches "unity developer"
	title := model.Normalize(job.Title)
	desc := model.Normalize(job.Description)

	var total float64
	for _, term := range c.SearchTerms {
		if strings.Contains(title, term) {
			total += s.weights.SearchTitle
		}
		if strings.Contains(desc, term) {
			total += s.weights.SearchDescription
		}
	}
	for _, term := range c.PreferredKeywords {
		if strings.Contains(title, term) {
			total += s.weights.PreferredTitle
		}
		if strings.Contains(desc, term) {
			total += s.weights.PreferredDescription
		}
	}
	for _, term := range c.ExcludedKeywords {
		if strings.Contains(title, term) || strings.Contains(desc, term) {
			total += s.weights.Excluded
		}
	}
	for _, term := range c.BonusTerms {
		switch {
		case strings.Contains(title, term):
			total += s.weights.BonusTitle
		case strings.Contains(desc, term):
			total += s.weights.BonusDescription
		}
	}

	return clamp(total)
}

// Annotate returns scored copies of jobs. Postings that cannot be scored
// are dropped with a warning and returned as errors; they never abort
// the batch.
func (s *Scorer) Annotate(jobs []model.Job, c model.Criteria) ([]model.Job, []error) {
	c = c.Normalize()

	out := make([]model.Job, 0, len(jobs))
	var dropped []error
	for _, j := range jobs {
		if strings.TrimSpace(j.Title) == "" {
			err := &ScoringError{Job: j, Reason: "empty title"}
			s.logger.Warn("dropping posting",
				zap.String("provider", j.Source),
				zap.String("adapter", j.Adapter),
				zap.String("url", j.URL),
				zap.Error(err),
			)
			dropped = append(dropped, err)
			continue
		}
		out = append(out, j.WithScore(s.Score(j, c)))
	}
	return out, dropped
}

func clamp(v float64) float64 {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}
