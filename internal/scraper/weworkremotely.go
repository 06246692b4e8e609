package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/rsilvagit/job-searcher/internal/httpclient"
	"github.com/rsilvagit/job-searcher/internal/model"
)

// WeWorkRemotely reads the programming category RSS feed.
type WeWorkRemotely struct {
	client  Fetcher
	feedURL string
	parser  *gofeed.Parser
}

func NewWeWorkRemotely(client Fetcher) *WeWorkRemotely {
	return &WeWorkRemotely{
		client:  client,
		feedURL: "https://weworkremotely.com/categories/remote-programming-jobs.rss",
		parser:  gofeed.NewParser(),
	}
}

func (w *WeWorkRemotely) Name() string {
	return "weworkremotely"
}

func (w *WeWorkRemotely) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	body, err := w.client.Get(ctx, w.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: %w", err)
	}
	if err := CheckContent(w.feedURL, body, "<rss", "<channel", "<feed"); err != nil {
		return nil, fmt.Errorf("weworkremotely: %w", err)
	}

	feed, err := w.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: %w", httpclient.Blocked(w.feedURL, "unparseable feed: "+err.Error()))
	}

	var jobs []model.Job
	for _, item := range feed.Items {
		company, title := splitCompanyTitle(item.Title)
		if title == "" {
			continue
		}
		description := htmlToText(item.Description)
		if !matchesQuery(q, title, description) {
			continue
		}

		location := "Remote"
		if region := item.Custom["region"]; region != "" {
			location = region
		}

		jobs = append(jobs, model.Job{
			Title:       title,
			Company:     company,
			Location:    location,
			Description: truncate(description, 500),
			URL:         item.Link,
			DatePosted:  item.Published,
			Adapter:     w.Name(),
		})
		if len(jobs) >= maxPerFetch {
			break
		}
	}

	return jobs, nil
}

// splitCompanyTitle splits feed titles of the form "Company: Title".
func splitCompanyTitle(s string) (company, title string) {
	s = cleanText(s)
	if i := strings.Index(s, ": "); i > 0 {
		return s[:i], strings.TrimSpace(s[i+2:])
	}
	return "", s
}
