package output

import (
	"context"
	"time"

	"github.com/rsilvagit/job-searcher/internal/model"
	"github.com/rsilvagit/job-searcher/internal/pipeline"
)

// ResultWriter defines how search results are presented or stored.
type ResultWriter interface {
	WriteReport(ctx context.Context, r Report) error
}

// ProviderStatus is the per-provider line of a report.
type ProviderStatus struct {
	Provider string       `json:"provider"`
	Status   model.Status `json:"status"`
	Adapter  string       `json:"adapter,omitempty"`
	Count    int          `json:"count"`
	Error    string       `json:"error,omitempty"`
}

// Report is what writers consume. It is never modified by a writer.
type Report struct {
	RunID     string           `json:"run_id"`
	Generated time.Time        `json:"generated_at"`
	Terms     []string         `json:"search_terms"`
	Providers []ProviderStatus `json:"providers"`
	Jobs      []model.Job      `json:"jobs"`
}

// FromResult builds a Report from a finished run.
func FromResult(res *pipeline.Result, q model.Query) Report {
	r := Report{
		RunID:     res.RunID.String(),
		Generated: res.Finished,
		Terms:     q.Terms,
		Jobs:      res.Jobs,
		Providers: make([]ProviderStatus, 0, len(res.Reports)),
	}
	for _, p := range res.Reports {
		ps := ProviderStatus{
			Provider: p.Provider,
			Status:   p.Status,
			Adapter:  p.Adapter,
			Count:    p.Count,
		}
		if p.Err != nil {
			ps.Error = p.Err.Error()
		}
		r.Providers = append(r.Providers, ps)
	}
	return r
}
