package app

import (
	"fmt"
	"sort"

	"fellingdate/adapters/stats/density"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/internal/config"
	"fellingdate/ports"
)

// DefaultAgreementThreshold is the critical agreement-index percentage
// below which a combination is flagged statistically unsound.
const DefaultAgreementThreshold = 60.0

// SeriesCombiner merges the felling-date estimates of series believed
// felled simultaneously into one joint estimate with agreement scoring.
type SeriesCombiner struct {
	catalog    ports.Catalog
	policy     config.UnknownDatasetPolicy
	truncation float64
}

// NewSeriesCombiner creates a combiner backed by the given catalog.
func NewSeriesCombiner(catalog ports.Catalog, opts EstimatorOptions) *SeriesCombiner {
	policy := opts.OnUnknownDataset
	if policy == "" {
		policy = config.PolicyFallback
	}
	truncation := opts.Truncation
	if truncation == 0 {
		truncation = 1e-7
	}
	return &SeriesCombiner{catalog: catalog, policy: policy, truncation: truncation}
}

// CombineOptions define the sapwood model and scoring parameters for a
// combination.
type CombineOptions struct {
	SWData    string
	DensFun   string
	CredMass  float64
	Threshold float64 // agreement-index cutoff, defaults to 60
}

// Combine aligns all series on a shared calendar axis, multiplies their
// PMFs pointwise and scores per-series agreement against the joint model.
// Mutually incompatible exact felling years are a fatal input conflict;
// everything else degrades to a flagged result.
func (c *SeriesCombiner) Combine(series []dendro.SeriesRecord, opts CombineOptions) (*dendro.CombinedModel, error) {
	if len(series) == 0 {
		return nil, core.ErrEmptyCombination
	}
	if opts.CredMass <= 0 || opts.CredMass >= 1 {
		return nil, core.NewInvalidCredMassError(opts.CredMass)
	}
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultAgreementThreshold
	}

	fam, err := density.ParseFamily(opts.DensFun)
	if err != nil {
		return nil, err
	}

	model := &dendro.CombinedModel{
		ASeries:   make(map[string]float64, len(series)),
		Kinds:     make(map[string]dendro.SeriesKind, len(series)),
		Threshold: threshold,
	}

	// Exact felling years must agree among themselves before anything is
	// multiplied: certainty series in conflict cannot be reconciled by a
	// low agreement score.
	exactYears := make([]int, 0, len(series))
	for _, rec := range series {
		model.Kinds[rec.ID] = rec.Kind()
		if year, ok := rec.ExactYear(); ok {
			exactYears = append(exactYears, year)
		}
	}
	for i := 1; i < len(exactYears); i++ {
		if exactYears[i] != exactYears[0] {
			return nil, core.NewConflictError(exactYears)
		}
	}

	ds, diags, err := resolveDataset(c.catalog, opts.SWData, c.policy)
	if err != nil {
		return nil, err
	}
	model.Diagnostics = append(model.Diagnostics, diags...)

	fitted, err := density.Fit(ds, fam)
	if err != nil {
		return nil, err
	}

	// Individual PMFs for everything that can carry one: peaked PMFs for
	// dated series with sapwood, point masses for certainty series. The
	// terminus-post-quem step functions need the axis first.
	individual := make(map[string]dendro.FellingDatePMF, len(series))
	var axisSources []dendro.FellingDatePMF
	var tpq []dendro.SeriesRecord
	for _, rec := range series {
		switch {
		case model.Kinds[rec.ID] == dendro.KindExactFellingYear:
			year, _ := rec.ExactYear()
			pmf := dendro.PointMass(rec.ID, year)
			individual[rec.ID] = pmf
			axisSources = append(axisSources, pmf)
		case rec.NSapwood == nil:
			if rec.Last == 0 {
				return nil, fmt.Errorf("series %s: undated and without sapwood; nothing to combine", rec.ID)
			}
			tpq = append(tpq, rec)
			model.Diagnostics = append(model.Diagnostics, dendro.Warning(dendro.CodeNoSapwood,
				"series %s: no sapwood observed; contributes only a terminus post quem at %d", rec.ID, rec.Last))
		default:
			if rec.Last == 0 {
				return nil, fmt.Errorf("series %s: undated series cannot join a calendar-year combination", rec.ID)
			}
			pmf := latticePMF(fitted, rec.ID, *rec.NSapwood, rec.Last, c.truncation)
			if len(pmf.Entries) == 0 {
				model.Diagnostics = append(model.Diagnostics, dendro.Warning(dendro.CodeDegeneratePMF,
					"series %s: probability mass vanished after truncation; excluded from combination", rec.ID))
				continue
			}
			individual[rec.ID] = pmf
			axisSources = append(axisSources, pmf)
		}
	}

	axis, ok := dendro.UnionAxis(axisSources)
	if !ok {
		return nil, fmt.Errorf("combination needs at least one series with a dated PMF or exact felling year")
	}

	// Terminus-post-quem series become step functions on the shared axis.
	for _, rec := range tpq {
		from := rec.Last
		if from < axis[0] {
			from = axis[0]
		}
		if from > axis[len(axis)-1] {
			// Constraint starts past every other support: zero overlap.
			from = axis[len(axis)-1] + 1
		}
		if from > axis[len(axis)-1] {
			individual[rec.ID] = dendro.FellingDatePMF{Series: rec.ID}
			continue
		}
		individual[rec.ID] = dendro.StepMass(rec.ID, from, axis[len(axis)-1])
	}

	// Pointwise product over the shared axis, in stable series order so
	// the result is bit-identical regardless of input ordering.
	ids := make([]string, 0, len(individual))
	for id := range individual {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	joint := make([]float64, len(axis))
	for i := range joint {
		joint[i] = 1
	}
	for _, id := range ids {
		aligned := individual[id].Aligned(axis)
		for i := range joint {
			joint[i] *= aligned[i]
		}
	}

	total := 0.0
	for _, p := range joint {
		total += p
	}
	if total <= 0 {
		// Disjoint supports: the joint density cannot be renormalized.
		// Degraded, not fatal - the caller inspects per-series agreement
		// (all zero) and the diagnostic to decide what to drop.
		model.Unsound = true
		for id := range individual {
			model.ASeries[id] = 0
		}
		model.Diagnostics = append(model.Diagnostics, dendro.Warning(dendro.CodeZeroOverlap,
			"series supports do not overlap; no common felling year exists"))
		return model, nil
	}

	combined := dendro.FellingDatePMF{Entries: make([]dendro.PMFEntry, 0, len(axis))}
	for i, year := range axis {
		combined.Entries = append(combined.Entries, dendro.PMFEntry{Year: year, Prob: joint[i] / total})
	}
	combined = combined.Truncate(c.truncation).Normalize()
	model.PMF = combined

	hdi, hdiDiags, err := density.HDI(combined.Entries, opts.CredMass)
	if err != nil {
		return nil, err
	}
	hdi.Dataset = ds.Name
	hdi.Family = fam.String()
	model.HDI = &hdi
	model.Diagnostics = append(model.Diagnostics, hdiDiags...)

	// Ward-Wilson style agreement: how much of the combined mass each
	// series can account for, penalized where the combined model
	// concentrates mass the individual PMF considers unlikely.
	sum := 0.0
	for _, id := range ids {
		a := agreementIndex(combined, individual[id])
		model.ASeries[id] = a
		sum += a
	}
	model.ACombined = sum / float64(len(ids))

	if model.ACombined < threshold {
		model.Unsound = true
		model.Diagnostics = append(model.Diagnostics, dendro.Warning(dendro.CodeLowAgreement,
			"combined agreement %.1f%% below critical threshold %.0f%%; combination is not statistically sound",
			model.ACombined, threshold))
	}
	return model, nil
}

// agreementIndex scores one series against the combined model:
// A = 100 * sum(p_comb) / sum(p_comb^2 / p_ind), both sums restricted to
// years where the individual PMF carries mass.
func agreementIndex(combined, individual dendro.FellingDatePMF) float64 {
	num := 0.0
	den := 0.0
	for _, e := range combined.Entries {
		pInd := individual.ProbAt(e.Year)
		if pInd <= 0 {
			continue
		}
		num += e.Prob
		den += e.Prob * e.Prob / pInd
	}
	if den <= 0 {
		return 0
	}
	return 100 * num / den
}
