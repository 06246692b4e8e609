package scraper

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rsilvagit/job-searcher/internal/model"
)

//go:embed datasets/*.yaml
var datasetFS embed.FS

// queryPlaceholder in a dataset field is replaced with the primary search
// term, so canned postings read like answers to the current search.
const queryPlaceholder = "{query}"

// defaultQueryText stands in for the placeholder when no term is set.
const defaultQueryText = "Developer"

// Dataset is a named, fixed collection of postings.
type Dataset struct {
	Name string      `yaml:"name"`
	Jobs []model.Job `yaml:"jobs"`
}

// LoadDatasets decodes every embedded dataset, keyed by name.
func LoadDatasets() (map[string]Dataset, error) {
	return loadDatasets(datasetFS, "datasets")
}

func loadDatasets(fsys fs.FS, dir string) (map[string]Dataset, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading datasets: %w", err)
	}

	out := make(map[string]Dataset, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading dataset %s: %w", e.Name(), err)
		}

		var ds Dataset
		if err := yaml.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("decoding dataset %s: %w", e.Name(), err)
		}
		if ds.Name == "" {
			ds.Name = strings.TrimSuffix(e.Name(), ".yaml")
		}
		if len(ds.Jobs) == 0 {
			return nil, fmt.Errorf("dataset %s: no jobs", ds.Name)
		}
		for i, j := range ds.Jobs {
			if strings.TrimSpace(j.Title) == "" {
				return nil, fmt.Errorf("dataset %s: job %d has no title", ds.Name, i)
			}
		}
		if _, dup := out[ds.Name]; dup {
			return nil, fmt.Errorf("dataset %s declared twice", ds.Name)
		}
		out[ds.Name] = ds
	}
	return out, nil
}

// DatasetNames returns the sorted names of datasets.
func DatasetNames(datasets map[string]Dataset) []string {
	names := make([]string, 0, len(datasets))
	for n := range datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Static serves a fixed dataset. It never touches the network and never fails.
type Static struct {
	dataset Dataset
}

func NewStatic(dataset Dataset) *Static {
	return &Static{dataset: dataset}
}

func (s *Static) Name() string {
	return "static:" + s.dataset.Name
}

// Fetch returns a fresh copy of the dataset on every call.
func (s *Static) Fetch(_ context.Context, q model.Query) ([]model.Job, error) {
	text := q.Primary()
	if text == "" {
		text = defaultQueryText
	}
	r := strings.NewReplacer(queryPlaceholder, text)

	jobs := make([]model.Job, len(s.dataset.Jobs))
	for i, j := range s.dataset.Jobs {
		j.Title = r.Replace(j.Title)
		j.Description = r.Replace(j.Description)
		j.Adapter = s.Name()
		jobs[i] = j
	}
	return jobs, nil
}
