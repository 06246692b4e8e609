package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

type LinkedIn struct {
	client  Fetcher
	baseURL string
}

func NewLinkedIn(client Fetcher) *LinkedIn {
	return &LinkedIn{
		client:  client,
		baseURL: "https://www.linkedin.com",
	}
}

func (l *LinkedIn) Name() string {
	return "linkedin"
}

func (l *LinkedIn) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	return fetchEachSearch(ctx, q, func(ctx context.Context, term, location string) ([]model.Job, error) {
		params := url.Values{}
		params.Set("keywords", term)
		params.Set("location", location)
		searchURL := fmt.Sprintf("%s/jobs/search?%s", l.baseURL, params.Encode())

		body, err := l.client.Get(ctx, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("linkedin: %w", err)
		}
		if err := CheckContent(searchURL, body, "base-card", "jobs-search__results-list", "jobs-search-no-results"); err != nil {
			return nil, fmt.Errorf("linkedin: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("linkedin: parsing HTML: %w", err)
		}

		var jobs []model.Job
		doc.Find(".base-card").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			title := cleanText(s.Find(".base-search-card__title").Text())
			if title == "" {
				return true
			}
			link, _ := s.Find("a").Attr("href")
			// tracking parameters differ per request and would defeat deduplication
			if i := strings.IndexByte(link, '?'); i >= 0 {
				link = link[:i]
			}
			date, _ := s.Find("time").Attr("datetime")
			jobs = append(jobs, model.Job{
				Title:      title,
				Company:    cleanText(s.Find(".base-search-card__subtitle").Text()),
				Location:   cleanText(s.Find(".job-search-card__location").Text()),
				Salary:     cleanText(s.Find(".job-search-card__salary-info").Text()),
				URL:        absoluteURL(l.baseURL, link),
				DatePosted: date,
				Adapter:    l.Name(),
			})
			return len(jobs) < maxPerFetch
		})

		return jobs, nil
	})
}
