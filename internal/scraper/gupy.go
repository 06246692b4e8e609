package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

type Gupy struct {
	client  Fetcher
	baseURL string
}

func NewGupy(client Fetcher) *Gupy {
	return &Gupy{
		client:  client,
		baseURL: "https://portal.gupy.io",
	}
}

func (g *Gupy) Name() string {
	return "gupy"
}

// Gupy search has no location parameter; the location is left to the
// hard filters.
func (g *Gupy) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	return fetchEachTerm(ctx, q, func(ctx context.Context, term string) ([]model.Job, error) {
		searchURL := fmt.Sprintf("%s/job-search/term=%s", g.baseURL, url.QueryEscape(term))

		body, err := g.client.Get(ctx, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("gupy: %w", err)
		}
		if err := CheckContent(searchURL, body, "job-list"); err != nil {
			return nil, fmt.Errorf("gupy: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gupy: parsing HTML: %w", err)
		}

		var jobs []model.Job
		doc.Find("[data-testid='job-list-item']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			title := cleanText(s.Find("h2").Text())
			if title == "" {
				return true
			}
			link, _ := s.Find("a").Attr("href")
			jobs = append(jobs, model.Job{
				Title:      title,
				Company:    cleanText(s.Find("[data-testid='company-name']").Text()),
				Location:   cleanText(s.Find("[data-testid='job-location']").Text()),
				URL:        absoluteURL(g.baseURL, link),
				DatePosted: cleanText(s.Find("[data-testid='job-published-date']").Text()),
				Adapter:    g.Name(),
			})
			return len(jobs) < maxPerFetch
		})

		return jobs, nil
	})
}
