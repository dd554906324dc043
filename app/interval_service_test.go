package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/adapters/catalog"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/internal/config"
)

func newTestEstimator(t *testing.T) *IntervalEstimator {
	t.Helper()
	return NewIntervalEstimator(catalog.New(), EstimatorOptions{})
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestEstimate_PMFSumsToOne(t *testing.T) {
	estimator := newTestEstimator(t)

	for _, n := range []float64{0, 5, 10, 20, 35} {
		result, err := estimator.Estimate(IntervalRequest{
			SeriesID: "t1",
			NSapwood: floatPtr(n),
			Last:     1500,
			DensFun:  "lognormal",
			CredMass: 0.954,
		})
		require.NoError(t, err, "n=%v", n)
		require.True(t, result.Estimated, "n=%v", n)
		assert.InDelta(t, 1.0, result.PMF.Sum(), 1e-9, "n=%v", n)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	estimator := newTestEstimator(t)
	req := IntervalRequest{
		SeriesID: "t1",
		NSapwood: floatPtr(12),
		Last:     1622,
		SWData:   "Hollstein_1980",
		DensFun:  "weibull",
		CredMass: 0.9,
		HDI:      true,
	}

	first, err := estimator.Estimate(req)
	require.NoError(t, err)
	second, err := estimator.Estimate(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// The sapwood already present anchors the estimate: with the
// heartwood/sapwood boundary held fixed, observing more sapwood pushes the
// most probable felling year later, never earlier.
func TestEstimate_MonotoneModeShift(t *testing.T) {
	estimator := newTestEstimator(t)
	boundary := 1400 // year of the last heartwood ring

	prevMode := 0
	for _, n := range []int{18, 22, 26, 30} {
		result, err := estimator.Estimate(IntervalRequest{
			SeriesID: "t1",
			NSapwood: floatPtr(float64(n)),
			Last:     boundary + n,
			DensFun:  "lognormal",
			CredMass: 0.954,
		})
		require.NoError(t, err)

		mode, ok := result.PMF.Mode()
		require.True(t, ok)
		assert.GreaterOrEqual(t, mode, boundary+n, "felling cannot predate the last measured ring")
		assert.Greater(t, mode, prevMode, "n=%d", n)
		prevMode = mode
	}
}

// Scenario from the Wazny dataset: the 95% interval must open at the last
// measured ring and stay tight around it.
func TestEstimate_Wazny1990Scenario(t *testing.T) {
	estimator := newTestEstimator(t)

	result, err := estimator.Estimate(IntervalRequest{
		SeriesID: "trs_1",
		NSapwood: floatPtr(10),
		Last:     1234,
		SWData:   "Wazny_1990",
		DensFun:  "lognormal",
		CredMass: 0.95,
		HDI:      true,
	})
	require.NoError(t, err)
	require.True(t, result.Estimated)
	require.NotNil(t, result.HDI)

	assert.Equal(t, 1234, result.HDI.Lower)
	require.NotNil(t, result.HDI.Upper)
	assert.Greater(t, *result.HDI.Upper, 1234)
	assert.Less(t, *result.HDI.Upper, 1234+40)
	assert.GreaterOrEqual(t, result.HDI.Mass, 0.95)
	assert.Equal(t, "Wazny_1990", result.HDI.Dataset)
	assert.Equal(t, "lognormal", result.HDI.Family)
}

func TestEstimate_RelativeYearsWhenUndated(t *testing.T) {
	estimator := newTestEstimator(t)

	result, err := estimator.Estimate(IntervalRequest{
		SeriesID: "undated",
		NSapwood: floatPtr(8),
		Last:     0,
		DensFun:  "lognormal",
		CredMass: 0.954,
	})
	require.NoError(t, err)
	require.True(t, result.Estimated)
	assert.True(t, result.PMF.Relative)
	assert.Equal(t, result.PMF.Entries[0].RingCount, result.PMF.Entries[0].Year)
}

func TestEstimate_MissingSapwoodIsNotFatal(t *testing.T) {
	estimator := newTestEstimator(t)

	result, err := estimator.Estimate(IntervalRequest{
		SeriesID: "no_sw",
		NSapwood: nil,
		Last:     1388,
		DensFun:  "lognormal",
		CredMass: 0.954,
		HDI:      true,
	})
	require.NoError(t, err)
	assert.False(t, result.Estimated)
	assert.Equal(t, dendro.KindTerminusPostQuem, result.Kind)
	assert.Nil(t, result.HDI)
	assert.True(t, dendro.HasCode(result.Diagnostics, dendro.CodeNoSapwood))
}

func TestEstimate_FatalInputs(t *testing.T) {
	estimator := newTestEstimator(t)
	base := IntervalRequest{SeriesID: "t", NSapwood: floatPtr(10), Last: 1500, DensFun: "lognormal"}

	for _, credMass := range []float64{0, 1, -0.1, 2} {
		req := base
		req.CredMass = credMass
		_, err := estimator.Estimate(req)
		assert.ErrorIs(t, err, core.ErrInvalidCredMass, "credMass=%v", credMass)
	}

	req := base
	req.CredMass = 0.954
	req.NSapwood = floatPtr(-3)
	_, err := estimator.Estimate(req)
	assert.ErrorIs(t, err, core.ErrInvalidSapwood)

	req.NSapwood = floatPtr(7.5)
	_, err = estimator.Estimate(req)
	assert.ErrorIs(t, err, core.ErrInvalidSapwood)

	req.NSapwood = floatPtr(10)
	req.DensFun = "pareto"
	_, err = estimator.Estimate(req)
	assert.ErrorIs(t, err, core.ErrUnsupportedFamily)
}

func TestEstimate_UnknownDatasetFallback(t *testing.T) {
	estimator := newTestEstimator(t)

	result, err := estimator.Estimate(IntervalRequest{
		SeriesID: "t",
		NSapwood: floatPtr(10),
		Last:     1500,
		SWData:   "Atlantis_1234",
		DensFun:  "lognormal",
		CredMass: 0.954,
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultDataset, result.Dataset)
	assert.True(t, dendro.HasCode(result.Diagnostics, dendro.CodeUnknownDataset))
}

func TestEstimate_UnknownDatasetReject(t *testing.T) {
	estimator := NewIntervalEstimator(catalog.New(), EstimatorOptions{
		OnUnknownDataset: config.PolicyReject,
	})

	_, err := estimator.Estimate(IntervalRequest{
		SeriesID: "t",
		NSapwood: floatPtr(10),
		Last:     1500,
		SWData:   "Atlantis_1234",
		DensFun:  "lognormal",
		CredMass: 0.954,
	})
	assert.ErrorIs(t, err, core.ErrUnknownDataset)
}

func TestEstimate_CountAboveEmpiricalRange(t *testing.T) {
	estimator := newTestEstimator(t)

	result, err := estimator.Estimate(IntervalRequest{
		SeriesID: "old_oak",
		NSapwood: floatPtr(60), // beyond any published maximum
		Last:     1700,
		SWData:   "Hollstein_1980",
		DensFun:  "lognormal",
		CredMass: 0.954,
		HDI:      true,
	})
	require.NoError(t, err)
	assert.True(t, dendro.HasCode(result.Diagnostics, dendro.CodeCountAboveRange))

	// The support this far out carries almost no mass, so the PMF may
	// degenerate; either way the call must not fail and must flag it.
	if result.Estimated && len(result.PMF.Entries) >= 2 {
		assert.InDelta(t, 1.0, result.PMF.Sum(), 1e-9)
	} else {
		assert.True(t, dendro.HasCode(result.Diagnostics, dendro.CodeDegeneratePMF))
	}
}
