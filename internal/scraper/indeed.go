package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

type Indeed struct {
	client  Fetcher
	baseURL string
}

func NewIndeed(client Fetcher) *Indeed {
	return &Indeed{
		client:  client,
		baseURL: "https://www.indeed.com",
	}
}

func (in *Indeed) Name() string {
	return "indeed"
}

func (in *Indeed) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	return fetchEachSearch(ctx, q, func(ctx context.Context, term, location string) ([]model.Job, error) {
		params := url.Values{}
		params.Set("q", term)
		params.Set("l", location)
		searchURL := fmt.Sprintf("%s/jobs?%s", in.baseURL, params.Encode())

		body, err := in.client.Get(ctx, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("indeed: %w", err)
		}
		if err := CheckContent(searchURL, body, "jobsearch-main", "jobsearch-resultslist", "job_seen_beacon"); err != nil {
			return nil, fmt.Errorf("indeed: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("indeed: parsing HTML: %w", err)
		}

		var jobs []model.Job
		doc.Find(".job_seen_beacon").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			title := cleanText(s.Find(".jobTitle span").First().Text())
			if title == "" {
				return true
			}
			link, _ := s.Find("a").Attr("href")
			jobs = append(jobs, model.Job{
				Title:       title,
				Company:     cleanText(s.Find(".companyName, [data-testid='company-name']").First().Text()),
				Location:    cleanText(s.Find(".companyLocation, [data-testid='text-location']").First().Text()),
				Salary:      cleanText(s.Find(".salary-snippet-container, .metadata.salary-snippet-container").First().Text()),
				Description: truncate(cleanText(s.Find(".job-snippet").Text()), 500),
				URL:         absoluteURL(in.baseURL, link),
				DatePosted:  cleanText(s.Find(".date").First().Text()),
				Adapter:     in.Name(),
			})
			return len(jobs) < maxPerFetch
		})

		return jobs, nil
	})
}
