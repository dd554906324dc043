package app

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"fellingdate/adapters/stats/density"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/internal/config"
	"fellingdate/ports"
)

// SPDAggregator sums independent per-series felling-date distributions
// into a summed probability density. Unlike combination, summation assumes
// no shared felling event: the curve describes activity, not a date.
type SPDAggregator struct {
	catalog    ports.Catalog
	policy     config.UnknownDatasetPolicy
	truncation float64
}

// NewSPDAggregator creates an aggregator backed by the given catalog.
func NewSPDAggregator(catalog ports.Catalog, opts EstimatorOptions) *SPDAggregator {
	policy := opts.OnUnknownDataset
	if policy == "" {
		policy = config.PolicyFallback
	}
	truncation := opts.Truncation
	if truncation == 0 {
		truncation = 1e-7
	}
	return &SPDAggregator{catalog: catalog, policy: policy, truncation: truncation}
}

// SPDOptions define the sapwood model used for the per-series PMFs.
type SPDOptions struct {
	SWData  string
	DensFun string
}

// Sum builds each contributing series' PMF (one goroutine per series -
// the estimates are independent), aligns them on the union calendar axis
// and sums pointwise. Each contributing PMF sums to 1 before aggregation,
// so the resulting curve integrates to the number of contributors.
func (a *SPDAggregator) Sum(series []dendro.SeriesRecord, opts SPDOptions) (*dendro.SummedPMF, error) {
	if len(series) == 0 {
		return nil, core.ErrEmptyCombination
	}

	fam, err := density.ParseFamily(opts.DensFun)
	if err != nil {
		return nil, err
	}

	ds, diags, err := resolveDataset(a.catalog, opts.SWData, a.policy)
	if err != nil {
		return nil, err
	}

	fitted, err := density.Fit(ds, fam)
	if err != nil {
		return nil, err
	}

	summed := &dendro.SummedPMF{Diagnostics: diags}

	var mu sync.Mutex
	var pmfs []dendro.FellingDatePMF
	var g errgroup.Group
	for _, rec := range series {
		rec := rec
		g.Go(func() error {
			pmf, diag := a.seriesPMF(fitted, rec)
			mu.Lock()
			defer mu.Unlock()
			if diag != nil {
				summed.Diagnostics = append(summed.Diagnostics, *diag)
			}
			if pmf != nil {
				pmfs = append(pmfs, *pmf)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(pmfs) == 0 {
		summed.Diagnostics = append(summed.Diagnostics, dendro.Warning(dendro.CodeDegeneratePMF,
			"no series contributed a probability mass function; summed curve is empty"))
		return summed, nil
	}

	// Stable axis regardless of goroutine completion order.
	sort.Slice(pmfs, func(i, j int) bool { return pmfs[i].Series < pmfs[j].Series })

	axis, _ := dendro.UnionAxis(pmfs)
	total := make([]float64, len(axis))
	for _, pmf := range pmfs {
		aligned := pmf.Aligned(axis)
		for i := range total {
			total[i] += aligned[i]
		}
	}

	summed.Years = axis
	summed.Density = total
	summed.N = len(pmfs)
	return summed, nil
}

// seriesPMF builds the individual unit-mass PMF for one series, or explains
// via a diagnostic why the series cannot contribute.
func (a *SPDAggregator) seriesPMF(fitted density.Fitted, rec dendro.SeriesRecord) (*dendro.FellingDatePMF, *dendro.Diagnostic) {
	if year, ok := rec.ExactYear(); ok {
		pmf := dendro.PointMass(rec.ID, year)
		return &pmf, nil
	}
	if rec.NSapwood == nil {
		d := dendro.Warning(dendro.CodeNoSapwood,
			"series %s: no sapwood observed; a terminus post quem cannot join a summed density", rec.ID)
		return nil, &d
	}
	if rec.Last == 0 {
		d := dendro.Warning(dendro.CodeDegeneratePMF,
			"series %s: undated series cannot join a calendar-year summed density", rec.ID)
		return nil, &d
	}
	pmf := latticePMF(fitted, rec.ID, *rec.NSapwood, rec.Last, a.truncation)
	if len(pmf.Entries) == 0 {
		d := dendro.Warning(dendro.CodeDegeneratePMF,
			"series %s: probability mass vanished after truncation; excluded from summed density", rec.ID)
		return nil, &d
	}
	return &pmf, nil
}
