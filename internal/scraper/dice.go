package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// diceJobPaths are the places the embedded page state has kept its job
// list across site revisions.
var diceJobPaths = [][]string{
	{"props", "pageProps", "jobs"},
	{"props", "pageProps", "searchResults", "jobs"},
	{"props", "pageProps", "initialState", "jobs"},
	{"jobs"},
	{"searchResults", "jobs"},
	{"data", "jobs"},
}

var diceCardSelectors = []string{
	".search-result",
	".job-tile",
	".job-card",
	`[data-testid="job-card"]`,
	".serp-result-content",
}

type diceItem struct {
	Title       string `mapstructure:"title"`
	JobTitle    string `mapstructure:"jobTitle"`
	Company     string `mapstructure:"company"`
	CompanyName string `mapstructure:"companyName"`
	Location    string `mapstructure:"location"`
	JobLocation string `mapstructure:"jobLocation"`
	Salary      string `mapstructure:"salary"`
	MinSalary   int    `mapstructure:"minSalary"`
	MaxSalary   int    `mapstructure:"maxSalary"`
	Description string `mapstructure:"description"`
	Summary     string `mapstructure:"summary"`
	URL         string `mapstructure:"url"`
	JobURL      string `mapstructure:"jobUrl"`
	DatePosted  string `mapstructure:"datePosted"`
}

// Dice searches the tech job board. Results come from the page state the
// site embeds for client rendering; the rendered cards are read when that
// state is missing.
type Dice struct {
	client  Fetcher
	baseURL string
}

func NewDice(client Fetcher) *Dice {
	return &Dice{
		client:  client,
		baseURL: "https://www.dice.com",
	}
}

func (d *Dice) Name() string {
	return "dice"
}

func (d *Dice) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	return fetchEachSearch(ctx, q, func(ctx context.Context, term, location string) ([]model.Job, error) {
		params := url.Values{
			"q":          {term},
			"radius":     {"30"},
			"radiusUnit": {"mi"},
			"page":       {"1"},
			"pageSize":   {"20"},
			"language":   {"en"},
		}
		if location != "" {
			params.Set("location", location)
		}
		searchURL := d.baseURL + "/jobs?" + params.Encode()

		body, err := d.client.Get(ctx, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("dice: %w", err)
		}
		if err := CheckContent(searchURL, body, "__NEXT_DATA__", "search-result", "job-tile", "job-card", "serp-result"); err != nil {
			return nil, fmt.Errorf("dice: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("dice: parsing HTML: %w", err)
		}

		if jobs, ok := d.fromPageState(doc); ok {
			return jobs, nil
		}
		return d.fromCards(doc), nil
	})
}

// fromPageState reports false when the page carries no usable job list.
func (d *Dice) fromPageState(doc *goquery.Document) ([]model.Job, bool) {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil, false
	}
	var state any
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false
	}

	var items []any
	for _, path := range diceJobPaths {
		if found, ok := lookupPath(state, path).([]any); ok && len(found) > 0 {
			items = found
			break
		}
	}
	if items == nil {
		return nil, false
	}

	var jobs []model.Job
	for _, entry := range items {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var item diceItem
		// Items whose fields changed shape are skipped, not fatal.
		if err := decodeItem(obj, &item); err != nil {
			continue
		}
		if job, ok := d.itemJob(item); ok {
			jobs = append(jobs, job)
		}
		if len(jobs) >= maxPerFetch {
			break
		}
	}
	return jobs, true
}

func (d *Dice) itemJob(item diceItem) (model.Job, bool) {
	title := cleanText(firstNonEmpty(item.Title, item.JobTitle))
	if title == "" {
		return model.Job{}, false
	}
	salary := item.Salary
	if salary == "" {
		salary = salaryRange(item.MinSalary, item.MaxSalary)
	}
	return model.Job{
		Title:       title,
		Company:     cleanText(firstNonEmpty(item.Company, item.CompanyName)),
		Location:    locationOrRemote(cleanText(firstNonEmpty(item.Location, item.JobLocation))),
		Salary:      salary,
		Description: truncate(htmlToText(firstNonEmpty(item.Description, item.Summary)), 500),
		URL:         absoluteURL(d.baseURL, firstNonEmpty(item.URL, item.JobURL)),
		DatePosted:  item.DatePosted,
		Adapter:     d.Name(),
	}, true
}

func (d *Dice) fromCards(doc *goquery.Document) []model.Job {
	var jobs []model.Job
	listings(doc, diceCardSelectors).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(`h3 a, h2 a, .job-title a, [data-testid="job-title"] a`).First()
		title := cleanText(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		jobs = append(jobs, model.Job{
			Title:       title,
			Company:     firstText(s, ".company", ".employer", `[data-testid="company"]`),
			Location:    locationOrRemote(firstText(s, ".location", ".job-location", `[data-testid="location"]`)),
			Salary:      firstText(s, ".salary", ".compensation", `[data-testid="salary"]`),
			Description: truncate(firstText(s, ".description", ".job-summary", ".snippet"), 500),
			URL:         absoluteURL(d.baseURL, href),
			Adapter:     d.Name(),
		})
		return len(jobs) < maxPerFetch
	})
	return jobs
}

// lookupPath walks nested JSON objects. It returns nil when a key is missing.
func lookupPath(v any, path []string) any {
	for _, key := range path {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = obj[key]
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
