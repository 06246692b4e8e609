package model

import (
	"strings"
)

// Job represents a single job posting produced by any source adapter.
type Job struct {
	Title       string  `json:"title" yaml:"title"`
	Company     string  `json:"company" yaml:"company"`
	Location    string  `json:"location" yaml:"location"`
	Salary      string  `json:"salary,omitempty" yaml:"salary"` // free text, empty when unknown
	Description string  `json:"description" yaml:"description"`
	URL         string  `json:"url" yaml:"url"`
	DatePosted  string  `json:"date_posted" yaml:"date_posted"` // free text ex: "2 days ago"
	Source      string  `json:"source" yaml:"-"`                // provider name
	Adapter     string  `json:"adapter" yaml:"-"`               // adapter that produced the posting
	Score       float64 `json:"relevance_score" yaml:"-"`
	Scored      bool    `json:"-" yaml:"-"`
}

// FullText returns all searchable text fields concatenated in lowercase.
func (j Job) FullText() string {
	return strings.ToLower(
		j.Title + " " + j.Description + " " + j.Location + " " + j.Salary,
	)
}

// Key returns the identity key used for deduplication across providers:
// normalized title, company and URL.
func (j Job) Key() string {
	return Normalize(j.Title) + "|" + Normalize(j.Company) + "|" + normalizeURL(j.URL)
}

// WithScore returns a copy of the job carrying the given relevance score.
func (j Job) WithScore(score float64) Job {
	j.Score = score
	j.Scored = true
	return j
}

// Normalize lowercases s, trims it and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}
