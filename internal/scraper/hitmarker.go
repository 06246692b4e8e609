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

// hitmarkerListSelectors are tried in order; the first one matching any
// element wins.
var hitmarkerListSelectors = []string{
	".job-listing",
	".job-card",
	".job-item",
	".job",
	".listing",
	"article",
	".opportunity",
	jobLinks,
}

// Hitmarker scrapes the gaming and esports job board. The markup changes
// often, so each field is looked up through several candidate selectors.
type Hitmarker struct {
	client  Fetcher
	baseURL string
}

func NewHitmarker(client Fetcher) *Hitmarker {
	return &Hitmarker{
		client:  client,
		baseURL: "https://hitmarker.net",
	}
}

func (h *Hitmarker) Name() string {
	return "hitmarker"
}

func (h *Hitmarker) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	return fetchEachTerm(ctx, q, func(ctx context.Context, term string) ([]model.Job, error) {
		searchURL := h.baseURL + "/jobs"
		if term != "" {
			searchURL += "?" + url.Values{"q": {term}}.Encode()
		}

		body, err := h.client.Get(ctx, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("hitmarker: %w", err)
		}
		if err := CheckContent(searchURL, body, "job-listing", "job-card", "job-item", `href="/jobs/`, `href="https://hitmarker.net/jobs/`); err != nil {
			return nil, fmt.Errorf("hitmarker: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("hitmarker: parsing HTML: %w", err)
		}

		var jobs []model.Job
		listings(doc, hitmarkerListSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			job, ok := h.parse(s)
			if ok {
				jobs = append(jobs, job)
			}
			return len(jobs) < maxPerFetch
		})

		return jobs, nil
	})
}

func (h *Hitmarker) parse(s *goquery.Selection) (model.Job, bool) {
	title := firstText(s, "h1", "h2", "h3", ".title", ".job-title", ".position")
	if title == "" && goquery.NodeName(s) == "a" {
		title = cleanText(s.Text())
	}
	if title == "" {
		return model.Job{}, false
	}

	link, ok := s.Attr("href")
	if !ok {
		link, _ = s.Find("a[href]").First().Attr("href")
	}
	switch {
	case link == "":
		link = h.baseURL + "/jobs"
	case !strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "http"):
		link = h.baseURL + "/jobs/" + link
	}

	return model.Job{
		Title:       title,
		Company:     firstText(s, ".company", ".employer", ".organization", ".studio"),
		Location:    firstText(s, ".location", ".job-location", ".place", ".region"),
		Salary:      firstText(s, ".salary", ".compensation", ".pay", ".wage"),
		Description: truncate(firstText(s, ".description", ".summary", ".excerpt", ".job-summary"), 500),
		URL:         absoluteURL(h.baseURL, link),
		Adapter:     h.Name(),
	}, true
}
