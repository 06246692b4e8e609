package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mitchellh/mapstructure"

	"github.com/rsilvagit/job-searcher/internal/httpclient"
	"github.com/rsilvagit/job-searcher/internal/model"
)

// remoteOKItem is one element of the RemoteOK public API array.
type remoteOKItem struct {
	ID          string   `mapstructure:"id"`
	Legal       string   `mapstructure:"legal"`
	Position    string   `mapstructure:"position"`
	Company     string   `mapstructure:"company"`
	Location    string   `mapstructure:"location"`
	SalaryMin   int      `mapstructure:"salary_min"`
	SalaryMax   int      `mapstructure:"salary_max"`
	Description string   `mapstructure:"description"`
	Tags        []string `mapstructure:"tags"`
	Date        string   `mapstructure:"date"`
	URL         string   `mapstructure:"url"`
}

// RemoteOK reads the public JSON API. The API returns every open posting in
// one document, so terms are matched client-side.
type RemoteOK struct {
	client  Fetcher
	baseURL string
}

func NewRemoteOK(client Fetcher) *RemoteOK {
	return &RemoteOK{
		client:  client,
		baseURL: "https://remoteok.com",
	}
}

func (r *RemoteOK) Name() string {
	return "remoteok"
}

func (r *RemoteOK) Fetch(ctx context.Context, q model.Query) ([]model.Job, error) {
	apiURL := r.baseURL + "/api"

	body, err := r.client.Get(ctx, apiURL, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}
	if err := CheckContent(apiURL, body, `"legal"`, `"position"`); err != nil {
		return nil, fmt.Errorf("remoteok: %w", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		// a 200 that is not the documented array is a substituted page
		return nil, fmt.Errorf("remoteok: %w", httpclient.Blocked(apiURL, "response is not a JSON array"))
	}

	var jobs []model.Job
	for _, entry := range raw {
		var item remoteOKItem
		if err := decodeItem(entry, &item); err != nil {
			return nil, fmt.Errorf("remoteok: decoding item: %w", err)
		}
		if item.Legal != "" || item.Position == "" {
			continue
		}

		description := htmlToText(item.Description)
		if !matchesQuery(q, item.Position, description, strings.Join(item.Tags, " ")) {
			continue
		}

		link := item.URL
		if link == "" {
			link = fmt.Sprintf("%s/remote-jobs/%s", r.baseURL, item.ID)
		}

		jobs = append(jobs, model.Job{
			Title:       cleanText(item.Position),
			Company:     cleanText(item.Company),
			Location:    locationOrRemote(item.Location),
			Salary:      salaryRange(item.SalaryMin, item.SalaryMax),
			Description: truncate(description, 500),
			URL:         link,
			DatePosted:  item.Date,
			Adapter:     r.Name(),
		})
		if len(jobs) >= maxPerFetch {
			break
		}
	}

	return jobs, nil
}

// decodeItem decodes one loosely typed API object into out. Numbers sent
// as strings and the like are accepted.
func decodeItem(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func htmlToText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return cleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Text())
}

func locationOrRemote(loc string) string {
	if loc = cleanText(loc); loc != "" {
		return loc
	}
	return "Remote"
}

func salaryRange(minSalary, maxSalary int) string {
	switch {
	case minSalary > 0 && maxSalary > 0:
		return fmt.Sprintf("$%d - $%d", minSalary, maxSalary)
	case minSalary > 0:
		return fmt.Sprintf("$%d+", minSalary)
	default:
		return ""
	}
}
