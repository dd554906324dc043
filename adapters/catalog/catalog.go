package catalog

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

// Registry is the constructible sapwood-dataset catalog. Built-in published
// datasets are loaded at construction; user datasets can be registered on
// top. All lookups after construction are read-only, so a Registry is safe
// to share across concurrent estimation calls without locking.
type Registry struct {
	datasets    map[string]dendro.SapwoodDataset
	defaultName string
}

// DefaultDataset is the documented fallback when an unknown dataset name is
// requested under the fallback policy.
const DefaultDataset = "Hollstein_1980"

// New builds a registry preloaded with the built-in published datasets.
func New() *Registry {
	r := &Registry{
		datasets:    make(map[string]dendro.SapwoodDataset),
		defaultName: DefaultDataset,
	}
	for _, ds := range builtinDatasets() {
		r.datasets[ds.Name] = ds
	}
	return r
}

// Register adds or replaces a dataset. Intended for startup wiring and
// tests, not for concurrent use.
func (r *Registry) Register(ds dendro.SapwoodDataset) error {
	if ds.Name == "" {
		return fmt.Errorf("dataset name must not be empty")
	}
	if ds.SampleSize() == 0 {
		return core.ErrEmptyDataset
	}
	r.datasets[ds.Name] = ds
	return nil
}

// SetDefault overrides the fallback dataset. The name must already be
// registered.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.datasets[name]; !ok {
		return core.NewUnknownDatasetError(name)
	}
	r.defaultName = name
	return nil
}

// Lookup returns the dataset registered under name.
func (r *Registry) Lookup(name string) (dendro.SapwoodDataset, error) {
	ds, ok := r.datasets[name]
	if !ok {
		return dendro.SapwoodDataset{}, core.NewUnknownDatasetError(name)
	}
	return ds, nil
}

// Default returns the fallback dataset.
func (r *Registry) Default() dendro.SapwoodDataset {
	return r.datasets[r.defaultName]
}

// Names lists registered dataset names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary holds descriptive statistics of a dataset's sapwood counts,
// reported alongside provenance metadata.
type Summary struct {
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	Citation   string  `json:"citation"`
	SampleSize int     `json:"sample_size"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	P95        float64 `json:"p95"`
}

// Summarize computes descriptive statistics over the histogram.
func Summarize(ds dendro.SapwoodDataset) (Summary, error) {
	var sample []float64
	for _, count := range ds.Counts() {
		for i := 0; i < ds.Histogram[count]; i++ {
			sample = append(sample, float64(count))
		}
	}
	if len(sample) == 0 {
		return Summary{}, core.ErrEmptyDataset
	}

	mean, err := stats.Mean(sample)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(sample)
	if err != nil {
		return Summary{}, err
	}
	p95, err := stats.Percentile(sample, 95)
	if err != nil {
		return Summary{}, err
	}

	min, max := ds.Range()
	return Summary{
		Name:       ds.Name,
		Region:     ds.Region,
		Citation:   ds.Citation,
		SampleSize: ds.SampleSize(),
		Min:        min,
		Max:        max,
		Mean:       mean,
		Median:     median,
		P95:        p95,
	}, nil
}
