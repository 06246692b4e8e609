package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/job-searcher/internal/model"
)

func job(title, company, url, source string, score float64) model.Job {
	return model.Job{Title: title, Company: company, URL: url, Source: source}.WithScore(score)
}

func TestAggregate_HigherScoreWinsAcrossProviders(t *testing.T) {
	a := job("Unity Developer", "GameStudio", "https://x/1", "A", 60)
	b := job("Unity Developer", "GameStudio", "https://x/1", "B", 75)

	out := Aggregate([]model.Job{a, b}, []string{"A", "B"}, 0)

	require.Len(t, out, 1)
	assert.Equal(t, 75.0, out[0].Score)
	assert.Equal(t, "B", out[0].Source)
}

func TestAggregate_TieGoesToEarlierProvider(t *testing.T) {
	b := job("Go Dev", "Acme", "https://x/1", "B", 50)
	a := job("go  dev", "ACME", "https://x/1/", "A", 50)

	out, stats := AggregateWithStats([]model.Job{b, a}, []string{"A", "B"}, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].Source)
	assert.Equal(t, Stats{Input: 2, Duplicates: 1, Output: 1}, stats)
}

func TestAggregate_TieWithinProviderKeepsFirstSeen(t *testing.T) {
	first := job("Go Dev", "Acme", "", "A", 40)
	first.Description = "first"
	second := job("Go Dev", "Acme", "", "A", 40)
	second.Description = "second"

	out := Aggregate([]model.Job{first, second}, []string{"A"}, 0)

	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Description)
}

func TestAggregate_DifferentURLsAreDistinct(t *testing.T) {
	out := Aggregate([]model.Job{
		job("Go Dev", "Acme", "https://x/1", "A", 40),
		job("Go Dev", "Acme", "https://x/2", "A", 40),
	}, []string{"A"}, 0)

	assert.Len(t, out, 2)
}

func TestAggregate_EqualScoresFollowProviderPriority(t *testing.T) {
	out := Aggregate([]model.Job{
		job("c", "", "3", "C", 30),
		job("b", "", "2", "B", 30),
		job("a", "", "1", "A", 30),
		job("top", "", "4", "C", 90),
	}, []string{"A", "B", "C"}, 0)

	var got []string
	for _, j := range out {
		got = append(got, j.Title)
	}
	assert.Equal(t, []string{"top", "a", "b", "c"}, got)
}

func TestAggregate_TruncatesAfterGlobalRanking(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 5; i++ {
		jobs = append(jobs, job(fmt.Sprintf("weak-%d", i), "", fmt.Sprintf("w%d", i), "A", 10))
	}
	for i := 0; i < 3; i++ {
		jobs = append(jobs, job(fmt.Sprintf("strong-%d", i), "", fmt.Sprintf("s%d", i), "B", 80))
	}

	out := Aggregate(jobs, []string{"A", "B"}, 3)

	require.Len(t, out, 3)
	for _, j := range out {
		assert.Equal(t, "B", j.Source)
	}
}

func TestAggregate_LengthBoundedAndMonotonic(t *testing.T) {
	var jobs []model.Job
	for i := 0; i < 10; i++ {
		jobs = append(jobs, job(fmt.Sprintf("t%d", i%7), "", fmt.Sprintf("u%d", i%7), "A", float64(i)))
	}

	prev := len(Aggregate(jobs, []string{"A"}, 0))
	assert.Equal(t, 7, prev)
	for limit := 10; limit >= 1; limit-- {
		n := len(Aggregate(jobs, []string{"A"}, limit))
		assert.LessOrEqual(t, n, limit)
		assert.LessOrEqual(t, n, prev)
		prev = n
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	jobs := []model.Job{
		job("Go Dev", "Acme", "https://x/1", "B", 55),
		job("Go Dev", "Acme", "https://x/1", "A", 55),
		job("Rust Dev", "Ferris", "https://x/2", "B", 70),
		job("Zig Dev", "Ziggy", "", "C", 70),
		job("Unity Dev", "Owl", "https://x/3", "A", 20),
		job("Unknown", "Nobody", "https://x/4", "Z", 70),
	}
	order := []string{"A", "B", "C"}

	once := Aggregate(jobs, order, 0)
	twice := Aggregate(once, order, 0)

	assert.Equal(t, once, twice)
}

func TestAggregate_DoesNotModifyInput(t *testing.T) {
	jobs := []model.Job{
		job("low", "", "1", "A", 10),
		job("high", "", "2", "A", 90),
	}

	_ = Aggregate(jobs, []string{"A"}, 1)

	assert.Equal(t, "low", jobs[0].Title)
	assert.Len(t, jobs, 2)
}

func TestAggregate_Empty(t *testing.T) {
	out, stats := AggregateWithStats(nil, nil, 10)

	assert.Empty(t, out)
	assert.Equal(t, Stats{}, stats)
}
