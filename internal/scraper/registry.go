package scraper

import (
	"fmt"
	"sort"
	"strings"
)

// StaticPrefix marks a chain entry that names a dataset instead of a live kind.
const StaticPrefix = "static:"

// Deps carries what adapters need to be constructed.
type Deps struct {
	// Fetcher is the provider's own transport. Required for live kinds.
	Fetcher  Fetcher
	Datasets map[string]Dataset
}

var liveKinds = map[string]func(Fetcher) Adapter{
	"indeed":         func(f Fetcher) Adapter { return NewIndeed(f) },
	"linkedin":       func(f Fetcher) Adapter { return NewLinkedIn(f) },
	"gupy":           func(f Fetcher) Adapter { return NewGupy(f) },
	"remoteok":       func(f Fetcher) Adapter { return NewRemoteOK(f) },
	"weworkremotely": func(f Fetcher) Adapter { return NewWeWorkRemotely(f) },
	"hitmarker":      func(f Fetcher) Adapter { return NewHitmarker(f) },
	"remotegamejobs": func(f Fetcher) Adapter { return NewRemoteGameJobs(f) },
	"hackernews":     func(f Fetcher) Adapter { return NewHackerNews(f) },
	"dice":           func(f Fetcher) Adapter { return NewDice(f) },
	"authenticjobs":  func(f Fetcher) Adapter { return NewAuthenticJobs(f) },
	"ingamejob":      func(f Fetcher) Adapter { return NewInGameJob(f) },
}

// LiveKinds returns the names of all live adapter kinds, sorted.
func LiveKinds() []string {
	kinds := make([]string, 0, len(liveKinds))
	for k := range liveKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// IsStatic reports whether kind names a static dataset.
func IsStatic(kind string) bool {
	return strings.HasPrefix(kind, StaticPrefix)
}

// Build constructs the adapter named by kind: a live kind such as
// "remoteok", or "static:<dataset>".
func Build(kind string, deps Deps) (Adapter, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))

	if IsStatic(kind) {
		name := strings.TrimPrefix(kind, StaticPrefix)
		ds, ok := deps.Datasets[name]
		if !ok {
			return nil, fmt.Errorf("unknown static dataset %q (available: %s)",
				name, strings.Join(DatasetNames(deps.Datasets), ", "))
		}
		return NewStatic(ds), nil
	}

	ctor, ok := liveKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown adapter kind %q (available: %s)", kind, strings.Join(LiveKinds(), ", "))
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("adapter %q needs a transport", kind)
	}
	return ctor(deps.Fetcher), nil
}
