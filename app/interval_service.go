package app

import (
	"math"

	"fellingdate/adapters/stats/density"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/internal/config"
	"fellingdate/ports"
)

// latticeSteps is the number of ring-count continuation steps evaluated
// past the observed sapwood count. 101 points cover any plausible
// remaining sapwood for the published datasets.
const latticeSteps = 101

// IntervalEstimator builds felling-date probability mass functions for
// single series from a fitted sapwood model.
type IntervalEstimator struct {
	catalog    ports.Catalog
	policy     config.UnknownDatasetPolicy
	truncation float64
}

// EstimatorOptions tune dataset fallback and tail truncation.
type EstimatorOptions struct {
	OnUnknownDataset config.UnknownDatasetPolicy
	Truncation       float64
}

// NewIntervalEstimator creates an interval estimator backed by the given
// catalog.
func NewIntervalEstimator(catalog ports.Catalog, opts EstimatorOptions) *IntervalEstimator {
	policy := opts.OnUnknownDataset
	if policy == "" {
		policy = config.PolicyFallback
	}
	truncation := opts.Truncation
	if truncation == 0 {
		truncation = 1e-7
	}
	return &IntervalEstimator{catalog: catalog, policy: policy, truncation: truncation}
}

// IntervalRequest defines the inputs for a single-series estimate.
// NSapwood nil means no sapwood was observed. Last 0 means the series is
// undated and the result axis stays in ring counts.
type IntervalRequest struct {
	SeriesID string
	NSapwood *float64
	Last     int
	SWData   string
	DensFun  string
	CredMass float64
	HDI      bool
}

// IntervalResult is the single-series felling-date estimate. Estimated is
// false when no estimate was possible (missing sapwood count); the
// Diagnostics slice explains why without forcing callers to parse text.
type IntervalResult struct {
	SeriesID    string                 `json:"series_id"`
	Estimated   bool                   `json:"estimated"`
	Kind        dendro.SeriesKind      `json:"kind"`
	PMF         dendro.FellingDatePMF  `json:"pmf"`
	HDI         *dendro.HDIInterval    `json:"hdi,omitempty"`
	Dataset     string                 `json:"dataset"`
	Family      string                 `json:"family"`
	Diagnostics []dendro.Diagnostic    `json:"diagnostics,omitempty"`
}

// Estimate validates the request, fits the sapwood model and builds the
// felling-date PMF. Fatal input errors return an error; degraded
// conditions return a usable result carrying diagnostics.
func (e *IntervalEstimator) Estimate(req IntervalRequest) (*IntervalResult, error) {
	if req.CredMass <= 0 || req.CredMass >= 1 {
		return nil, core.NewInvalidCredMassError(req.CredMass)
	}

	result := &IntervalResult{SeriesID: req.SeriesID, Kind: dendro.KindDatedRange}

	if req.NSapwood == nil {
		result.Kind = dendro.KindTerminusPostQuem
		result.Diagnostics = append(result.Diagnostics, dendro.Warning(dendro.CodeNoSapwood,
			"series %s: no sapwood observed; only a terminus post quem (>= %d) can be given", req.SeriesID, req.Last))
		return result, nil
	}

	n := *req.NSapwood
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, core.NewInvalidSapwoodError("not a number")
	}
	if n < 0 {
		return nil, core.NewInvalidSapwoodError("negative count")
	}
	if n != math.Trunc(n) {
		return nil, core.NewInvalidSapwoodError("count must be a whole number of rings")
	}
	nSapwood := int(n)

	fam, err := density.ParseFamily(req.DensFun)
	if err != nil {
		return nil, err
	}

	ds, diags, err := resolveDataset(e.catalog, req.SWData, e.policy)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = append(result.Diagnostics, diags...)
	result.Dataset = ds.Name
	result.Family = fam.String()

	fitted, err := density.Fit(ds, fam)
	if err != nil {
		return nil, err
	}

	if _, max := ds.Range(); nSapwood > max {
		result.Diagnostics = append(result.Diagnostics, dendro.Warning(dendro.CodeCountAboveRange,
			"series %s: observed sapwood count %d exceeds the maximum %d in dataset %s",
			req.SeriesID, nSapwood, max, ds.Name))
	}

	result.PMF = latticePMF(fitted, req.SeriesID, nSapwood, req.Last, e.truncation)

	switch len(result.PMF.Entries) {
	case 0:
		result.Diagnostics = append(result.Diagnostics, dendro.Warning(dendro.CodeDegeneratePMF,
			"series %s: all lattice probabilities fell below the truncation threshold; no interval computable", req.SeriesID))
		return result, nil
	case 1:
		result.Estimated = true
		if req.HDI {
			result.HDI = &dendro.HDIInterval{
				Lower:    result.PMF.Entries[0].Year,
				Mass:     1,
				CredMass: req.CredMass,
				Dataset:  ds.Name,
				Family:   fam.String(),
			}
			result.Diagnostics = append(result.Diagnostics, dendro.Warning(dendro.CodeDegeneratePMF,
				"series %s: probability mass collapsed to a single point; upper bound undefined", req.SeriesID))
		}
		return result, nil
	}

	result.Estimated = true
	if req.HDI {
		hdi, hdiDiags, err := density.HDI(result.PMF.Entries, req.CredMass)
		if err != nil {
			return nil, err
		}
		hdi.Dataset = ds.Name
		hdi.Family = fam.String()
		result.HDI = &hdi
		result.Diagnostics = append(result.Diagnostics, hdiDiags...)
	}
	return result, nil
}

// latticePMF evaluates the fitted density over a fixed lattice of ring
// counts continuing the observed count, shifts to calendar years when the
// series is dated, drops negligible tails and renormalizes.
func latticePMF(fitted density.Fitted, seriesID string, nSapwood, last int, eps float64) dendro.FellingDatePMF {
	pmf := dendro.FellingDatePMF{
		Series:   seriesID,
		Relative: last == 0,
		Entries:  make([]dendro.PMFEntry, 0, latticeSteps),
	}
	for i := 0; i < latticeSteps; i++ {
		count := nSapwood + i
		year := count
		if last != 0 {
			year = last - nSapwood + count
		}
		pmf.Entries = append(pmf.Entries, dendro.PMFEntry{
			Year:      year,
			RingCount: count,
			Prob:      fitted.Density(float64(count)),
		})
	}
	return pmf.Truncate(eps).Normalize()
}

// resolveDataset looks up a dataset honoring the unknown-name policy.
// An empty name selects the default dataset without a diagnostic.
func resolveDataset(catalog ports.Catalog, name string, policy config.UnknownDatasetPolicy) (dendro.SapwoodDataset, []dendro.Diagnostic, error) {
	if name == "" {
		return catalog.Default(), nil, nil
	}
	ds, err := catalog.Lookup(name)
	if err == nil {
		return ds, nil, nil
	}
	if policy == config.PolicyReject {
		return dendro.SapwoodDataset{}, nil, err
	}
	fallback := catalog.Default()
	diag := dendro.Warning(dendro.CodeUnknownDataset,
		"unknown sapwood dataset %q; falling back to %s", name, fallback.Name)
	return fallback, []dendro.Diagnostic{diag}, nil
}
