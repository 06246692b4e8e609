package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

var authenticJobsSelectors = []string{
	"article.job-listing",
	".job-listing",
	".job-item",
	"div[data-job]",
	".job-card",
	".job",
	".listing",
	".opportunity",
	`a[href*="/job/"]`,
}

// AuthenticJobs reads the design and development board's listing page.
// Its API was retired, so terms are matched locally.
type AuthenticJobs struct {
	client  Fetcher
	baseURL string
}

func NewAuthenticJobs(client Fetcher) *AuthenticJobs {
	return &AuthenticJobs{
		client:  client,
		baseURL: "https://authenticjobs.com",
	}
}

func (a *AuthenticJobs) Name() string {
	return "authenticjobs"
}

func (a *AuthenticJobs) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	pageURL := a.baseURL + "/jobs"

	body, err := a.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("authenticjobs: %w", err)
	}
	if err := CheckContent(pageURL, body, "job-listing", "job-item", "data-job", "job-card", `href="/job/`, `href="https://authenticjobs.com/job/`); err != nil {
		return nil, fmt.Errorf("authenticjobs: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("authenticjobs: parsing HTML: %w", err)
	}

	var jobs []model.Job
	listings(doc, authenticJobsSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		job, ok := cardJob(s, a.baseURL, a.Name())
		if ok && matchesQuery(q, job.Title, job.Company, job.Description) {
			jobs = append(jobs, job)
		}
		return len(jobs) < maxPerFetch
	})

	return jobs, nil
}
