package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// RemoteGameJobs lists remote game development positions. It has no
// server-side search, so the listing page is matched against the terms.
type RemoteGameJobs struct {
	client  Fetcher
	baseURL string
}

func NewRemoteGameJobs(client Fetcher) *RemoteGameJobs {
	return &RemoteGameJobs{
		client:  client,
		baseURL: "https://remotegamejobs.com",
	}
}

func (r *RemoteGameJobs) Name() string {
	return "remotegamejobs"
}

func (r *RemoteGameJobs) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	pageURL := r.baseURL + "/"

	body, err := r.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remotegamejobs: %w", err)
	}
	if err := CheckContent(pageURL, body, "job-box", `href="/jobs/`); err != nil {
		return nil, fmt.Errorf("remotegamejobs: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("remotegamejobs: parsing HTML: %w", err)
	}

	var jobs []model.Job
	listings(doc, []string{".job-box", jobLinks}).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := firstText(s, "h2", "h3", "h4", ".job-title")
		if title == "" {
			title = cleanText(s.Text())
		}
		if title == "" {
			return true
		}
		company := firstText(s, "[class*='company']")
		location := firstText(s, "[class*='location']")
		if !matchesQuery(q, title, company) {
			return true
		}

		link, ok := s.Attr("href")
		if !ok {
			link, _ = s.Find("a[href]").First().Attr("href")
		}

		jobs = append(jobs, model.Job{
			Title:    title,
			Company:  company,
			Location: locationOrRemote(location),
			URL:      absoluteURL(r.baseURL, link),
			Adapter:  r.Name(),
		})
		return len(jobs) < maxPerFetch
	})

	return jobs, nil
}
