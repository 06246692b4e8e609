// Package filter applies the hard filters of a run. A posting failing any
// filter is excluded before ranking, not down-scored.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rsilvagit/job-searcher/internal/model"
)

// Options holds all filter criteria. Zero fields mean "no filter".
// The text filters take comma-separated alternatives.
type Options struct {
	MinScore   float64
	MinSalary  int    // yearly; postings without a parseable salary pass
	Experience string // junior, mid, senior
	JobType    string // full-time, part-time, contract, internship
	WorkModel  string // remote, hybrid, on-site
	Region     string // text to match against the posting
}

// Step reports what a filter pass did.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Apply filters a slice of jobs, returning only those that match all criteria.
func Apply(jobs []model.Job, opts Options) ([]model.Job, Step) {
	step := Step{Initial: len(jobs)}
	if opts.isEmpty() {
		step.Left = len(jobs)
		return jobs, step
	}

	result := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if matchJob(j, opts) {
			result = append(result, j)
		}
	}
	step.Left = len(result)
	step.Dropped = step.Initial - step.Left
	return result, step
}

func matchJob(j model.Job, opts Options) bool {
	if opts.MinScore > 0 && j.Score < opts.MinScore {
		return false
	}
	if opts.MinSalary > 0 {
		if salary, ok := ParseSalary(j.Salary); ok && salary < opts.MinSalary {
			return false
		}
	}

	text := j.FullText()

	if opts.JobType != "" && !containsAny(text, opts.JobType) {
		return false
	}
	if opts.WorkModel != "" && !containsAny(text, opts.WorkModel) {
		return false
	}
	if opts.Experience != "" && !containsAny(text, opts.Experience) {
		return false
	}
	if opts.Region != "" && !containsAny(text, opts.Region) {
		return false
	}
	return true
}

// containsAny checks if text contains any of the comma-separated terms.
func containsAny(text, terms string) bool {
	for _, term := range strings.Split(terms, ",") {
		term = strings.TrimSpace(strings.ToLower(term))
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func (o Options) isEmpty() bool {
	return o.MinScore <= 0 && o.MinSalary <= 0 &&
		o.JobType == "" && o.WorkModel == "" && o.Experience == "" && o.Region == ""
}

var (
	salaryNumber = regexp.MustCompile(`(\d[\d,.]*)\s*(k\b)?`)
	decimalTail  = regexp.MustCompile(`[.,](\d{1,2})$`)
	hourlyMarker = regexp.MustCompile(`(?i)(/\s*h(ou)?r|per\s+hour|hourly)`)
)

// hoursPerYear converts hourly rates to a yearly figure.
const hoursPerYear = 2080

// ParseSalary extracts the lower bound of a free-text salary as a yearly
// amount: "$75,000.00 - $110,000.00" is 75000, "90k+" is 90000 and
// "$45.50/hour" is 94640. It reports false when no number is present.
func ParseSalary(s string) (int, bool) {
	m := salaryNumber.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, false
	}

	digits := strings.TrimRight(m[1], ".,")
	if m[2] != "" {
		// "1.5k" keeps its decimals
		digits = strings.ReplaceAll(digits, ",", "")
	} else {
		// one or two trailing digits are cents ("45.50", "8.000,50");
		// any other separator groups thousands ("75,000", "8.000")
		var cents string
		if loc := decimalTail.FindStringSubmatchIndex(digits); loc != nil {
			cents = digits[loc[2]:loc[3]]
			digits = digits[:loc[0]]
		}
		digits = strings.NewReplacer(",", "", ".", "").Replace(digits)
		if cents != "" {
			digits += "." + cents
		}
	}
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	if m[2] != "" {
		value *= 1000
	}
	if hourlyMarker.MatchString(s) {
		value *= hoursPerYear
	}
	return int(value), true
}
