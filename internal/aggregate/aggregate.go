// Package aggregate merges scored postings from all providers into one
// ranked, de-duplicated list.
package aggregate

import (
	"sort"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// Stats describes one aggregation.
type Stats struct {
	Input      int
	Duplicates int
	Output     int
}

// Aggregate is AggregateWithStats without the stats.
func Aggregate(jobs []model.Job, providerOrder []string, limit int) []model.Job {
	out, _ := AggregateWithStats(jobs, providerOrder, limit)
	return out
}

// AggregateWithStats groups jobs by identity key and keeps the highest
// scoring member of each group; ties go to the provider declared first in
// providerOrder, then to the posting seen first. Survivors are ordered by
// provider priority, stable-sorted by score descending and finally
// truncated to limit. limit <= 0 means no limit.
//
// The result is a new slice; jobs is not modified. Aggregating a result
// again with the same providerOrder returns it unchanged.
func AggregateWithStats(jobs []model.Job, providerOrder []string, limit int) ([]model.Job, Stats) {
	stats := Stats{Input: len(jobs)}
	rank := providerRank(providerOrder)

	type entry struct {
		job   model.Job
		index int
	}
	best := make(map[string]entry, len(jobs))
	for i, j := range jobs {
		key := j.Key()
		cur, ok := best[key]
		if !ok {
			best[key] = entry{job: j, index: i}
			continue
		}
		stats.Duplicates++
		if beats(j, cur.job, rank) {
			best[key] = entry{job: j, index: i}
		}
	}

	survivors := make([]entry, 0, len(best))
	for _, e := range best {
		survivors = append(survivors, e)
	}
	// provider priority, then input order
	sort.Slice(survivors, func(a, b int) bool {
		ra, rb := rank(survivors[a].job.Source), rank(survivors[b].job.Source)
		if ra != rb {
			return ra < rb
		}
		return survivors[a].index < survivors[b].index
	})

	out := make([]model.Job, len(survivors))
	for i, e := range survivors {
		out[i] = e.job
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	stats.Output = len(out)
	return out, stats
}

// beats reports whether candidate should replace current within a group.
func beats(candidate, current model.Job, rank func(string) int) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return rank(candidate.Source) < rank(current.Source)
}

// providerRank maps a provider to its declaration index. Unknown providers
// rank after all declared ones.
func providerRank(order []string) func(string) int {
	idx := make(map[string]int, len(order))
	for i, p := range order {
		if _, dup := idx[p]; !dup {
			idx[p] = i
		}
	}
	return func(p string) int {
		if i, ok := idx[p]; ok {
			return i
		}
		return len(order)
	}
}
