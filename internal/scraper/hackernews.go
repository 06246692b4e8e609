package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// HackerNews reads the YC jobs page. Titles follow "Company (YC X) Is Hiring ...".
type HackerNews struct {
	client  Fetcher
	baseURL string
}

func NewHackerNews(client Fetcher) *HackerNews {
	return &HackerNews{
		client:  client,
		baseURL: "https://news.ycombinator.com",
	}
}

func (h *HackerNews) Name() string {
	return "hackernews"
}

func (h *HackerNews) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	pageURL := h.baseURL + "/jobs"

	body, err := h.client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hackernews: %w", err)
	}
	if err := CheckContent(pageURL, body, "athing", "titleline", "hnmain"); err != nil {
		return nil, fmt.Errorf("hackernews: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hackernews: parsing HTML: %w", err)
	}

	var jobs []model.Job
	doc.Find("tr.athing").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a := s.Find(".titleline > a").First()
		title := cleanText(a.Text())
		if title == "" || !matchesQuery(q, title) {
			return true
		}
		link, _ := a.Attr("href")
		age := cleanText(s.Next().Find(".age").Text())

		jobs = append(jobs, model.Job{
			Title:      title,
			Company:    hnCompany(title),
			Location:   "See posting",
			URL:        absoluteURL(h.baseURL, link),
			DatePosted: age,
			Adapter:    h.Name(),
		})
		return len(jobs) < maxPerFetch
	})

	return jobs, nil
}

// hnCompany extracts the company from titles like "Acme (YC S21) is hiring".
func hnCompany(title string) string {
	if i := strings.Index(title, " ("); i > 0 {
		return title[:i]
	}
	lower := strings.ToLower(title)
	if i := strings.Index(lower, " is hiring"); i > 0 {
		return title[:i]
	}
	return ""
}
