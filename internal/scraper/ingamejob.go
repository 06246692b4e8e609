package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

var inGameJobSelectors = []string{
	".job-card",
	".job-item",
	".job-listing",
	`a[href*="/job/"]`,
	".premium-jobs a",
	".new-jobs a",
}

// InGameJob reads the front page of the game industry board, which lists
// the newest and promoted openings.
type InGameJob struct {
	client  Fetcher
	baseURL string
}

func NewInGameJob(client Fetcher) *InGameJob {
	return &InGameJob{
		client:  client,
		baseURL: "https://ingamejob.com",
	}
}

func (g *InGameJob) Name() string {
	return "ingamejob"
}

func (g *InGameJob) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	pageURL := g.baseURL + "/en"

	body, err := g.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ingamejob: %w", err)
	}
	if err := CheckContent(pageURL, body, "job-card", "job-item", "job-listing", "premium-jobs", "new-jobs", "/job/"); err != nil {
		return nil, fmt.Errorf("ingamejob: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ingamejob: parsing HTML: %w", err)
	}

	var jobs []model.Job
	listings(doc, inGameJobSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		job, ok := cardJob(s, g.baseURL, g.Name())
		if !ok {
			return true
		}
		if job.Description == "" {
			job.Description = truncate(cleanText(s.Text()), 200)
		}
		if matchesQuery(q, job.Title, job.Company) {
			jobs = append(jobs, job)
		}
		return len(jobs) < maxPerFetch
	})

	return jobs, nil
}
