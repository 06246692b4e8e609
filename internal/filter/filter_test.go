package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsilvagit/job-searcher/internal/model"
)

var sample = []model.Job{
	{Title: "Senior Go Developer", Location: "Remote", Salary: "$120,000 - $150,000", Description: "Full-time role", Score: 70},
	{Title: "Junior Frontend Developer", Location: "São Paulo", Salary: "$45/hour", Description: "Hybrid, part-time", Score: 30},
	{Title: "Unity Developer", Location: "Remote", Description: "Contract position", Score: 50},
}

func titles(jobs []model.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Title
	}
	return out
}

func TestApply_NoOptionsKeepsEverything(t *testing.T) {
	out, step := Apply(sample, Options{})

	assert.Len(t, out, 3)
	assert.Equal(t, Step{Initial: 3, Dropped: 0, Left: 3}, step)
}

func TestApply_MinScore(t *testing.T) {
	out, step := Apply(sample, Options{MinScore: 50})

	assert.Equal(t, []string{"Senior Go Developer", "Unity Developer"}, titles(out))
	assert.Equal(t, Step{Initial: 3, Dropped: 1, Left: 2}, step)
}

func TestApply_MinSalaryLetsUnknownSalaryPass(t *testing.T) {
	out, _ := Apply(sample, Options{MinSalary: 100000})

	assert.Equal(t, []string{"Senior Go Developer", "Unity Developer"}, titles(out))
}

func TestApply_MinSalaryWithCents(t *testing.T) {
	jobs := []model.Job{
		{Title: "Support Engineer", Salary: "$75,000.00 - $85,000.00 a year"},
		{Title: "Contract QA", Salary: "$45.50/hour"},
		{Title: "Staff Engineer", Salary: "$180,000.00"},
	}

	out, step := Apply(jobs, Options{MinSalary: 100000})

	assert.Equal(t, []string{"Staff Engineer"}, titles(out))
	assert.Equal(t, 2, step.Dropped)
}

func TestApply_TextFilters(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want []string
	}{
		{"experience", Options{Experience: "senior, lead"}, []string{"Senior Go Developer"}},
		{"work model", Options{WorkModel: "remote"}, []string{"Senior Go Developer", "Unity Developer"}},
		{"region", Options{Region: "são paulo"}, []string{"Junior Frontend Developer"}},
		{"job type", Options{JobType: "contract,part-time"}, []string{"Junior Frontend Developer", "Unity Developer"}},
		{"combined", Options{WorkModel: "remote", JobType: "full-time"}, []string{"Senior Go Developer"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := Apply(sample, tc.opts)
			assert.Equal(t, tc.want, titles(out))
		})
	}
}

func TestParseSalary(t *testing.T) {
	cases := map[string]int{
		"$75,000 - $110,000": 75000,
		"90k+":               90000,
		"$1.5k/month":        1500,
		"$45/hour":           93600,
		"R$ 8.000 por mês":   8000,
		"$100,000+ USD":      100000,
		"$75,000.00":         75000,
		"$45.50/hour":        94640,
		"R$ 8.000,50":        8000,
		"Up to $95,000.":     95000,

		"$80,000.00 - $100,000.00 a year": 80000,
	}
	for in, want := range cases {
		got, ok := ParseSalary(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseSalary("Competitive")
	assert.False(t, ok)
	_, ok = ParseSalary("")
	assert.False(t, ok)
}
