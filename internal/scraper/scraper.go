package scraper

import (
	"context"
	"net/http"
	"strings"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// maxPerFetch caps how many postings a single request contributes.
const maxPerFetch = 30

// Adapter defines the contract every job source must satisfy, live or static.
type Adapter interface {
	// Name returns the adapter kind, e.g. "indeed" or "static:gamedev".
	Name() string

	// Fetch returns raw postings for q. Live adapters fail with an error
	// matching httpclient.ErrBlocked or httpclient.ErrTransient.
	Fetch(ctx context.Context, q model.Query) ([]model.Job, error)
}

// Fetcher is the transport a live adapter issues requests through.
// *httpclient.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error)
}

// searchTerms returns the non-empty terms of q, or a single empty term so
// query-driven sites are still hit once.
func searchTerms(q model.Query) []string {
	var terms []string
	for _, t := range q.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return []string{""}
	}
	return terms
}

// fetchEachTerm runs fn once per search term and merges the results.
// The first failure aborts the adapter: a site blocking one query is
// treated as hostile for all of them.
func fetchEachTerm(ctx context.Context, q model.Query, fn func(ctx context.Context, term string) ([]model.Job, error)) ([]model.Job, error) {
	var jobs []model.Job
	for _, term := range searchTerms(q) {
		batch, err := fn(ctx, term)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch...)
	}
	return jobs, nil
}

// fetchEachSearch runs fn once per term and location pair, terms outer.
// Like fetchEachTerm, the first failure aborts the adapter.
func fetchEachSearch(ctx context.Context, q model.Query, fn func(ctx context.Context, term, location string) ([]model.Job, error)) ([]model.Job, error) {
	return fetchEachTerm(ctx, q, func(ctx context.Context, term string) ([]model.Job, error) {
		var jobs []model.Job
		for _, loc := range q.Places() {
			batch, err := fn(ctx, term, loc)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, batch...)
		}
		return jobs, nil
	})
}

// matchesQuery reports whether any query term appears in the given text.
// An empty query matches everything. Used by feed adapters whose endpoint
// cannot filter server-side.
func matchesQuery(q model.Query, text ...string) bool {
	terms := searchTerms(q)
	if len(terms) == 1 && terms[0] == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join(text, " "))
	for _, t := range terms {
		if strings.Contains(haystack, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// absoluteURL resolves link against base when it is relative.
func absoluteURL(base, link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "/"):
		return strings.TrimRight(base, "/") + link
	default:
		return strings.TrimRight(base, "/") + "/" + link
	}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
