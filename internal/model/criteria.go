package model

import (
	"slices"
	"strings"
)

// Criteria holds the term sets a run scores postings against.
// It is built once per run and never mutated afterwards.
type Criteria struct {
	SearchTerms       []string
	PreferredKeywords []string
	ExcludedKeywords  []string
	BonusTerms        []string
}

// Normalize returns a copy where every set is lowercased, trimmed,
// de-duplicated and sorted. Scoring only ever sees normalized criteria,
// so term order and repeated terms have no effect on the result.
func (c Criteria) Normalize() Criteria {
	return Criteria{
		SearchTerms:       normalizeSet(c.SearchTerms),
		PreferredKeywords: normalizeSet(c.PreferredKeywords),
		ExcludedKeywords:  normalizeSet(c.ExcludedKeywords),
		BonusTerms:        normalizeSet(c.BonusTerms),
	}
}

// IsEmpty reports whether no set holds a usable term.
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return len(n.SearchTerms)+len(n.PreferredKeywords)+len(n.ExcludedKeywords)+len(n.BonusTerms) == 0
}

func normalizeSet(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = Normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Query is what a source adapter fetches postings for. Location-aware
// adapters search every term in every location.
type Query struct {
	Terms     []string
	Locations []string
}

// Primary returns the first non-empty search term, or "" when there is none.
func (q Query) Primary() string {
	for _, t := range q.Terms {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// Places returns the non-empty locations of q, or a single empty location
// so every term is still searched once.
func (q Query) Places() []string {
	var out []string
	for _, l := range q.Locations {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

// Status describes how a provider's result set was obtained.
type Status string

const (
	StatusLive     Status = "live"
	StatusFallback Status = "fallback"
	StatusStatic   Status = "static"
	StatusEmpty    Status = "empty"
)
