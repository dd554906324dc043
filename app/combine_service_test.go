package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/adapters/catalog"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

func newTestCombiner(t *testing.T) *SeriesCombiner {
	t.Helper()
	return NewSeriesCombiner(catalog.New(), EstimatorOptions{})
}

func defaultCombineOptions() CombineOptions {
	return CombineOptions{DensFun: "lognormal", CredMass: 0.954}
}

func roofGroup() []dendro.SeriesRecord {
	// Four timbers from one roof phase, last rings a few years apart.
	return []dendro.SeriesRecord{
		{ID: "beam_1", Last: 1480, NSapwood: intPtr(12)},
		{ID: "beam_2", Last: 1482, NSapwood: intPtr(14)},
		{ID: "beam_3", Last: 1478, NSapwood: intPtr(9)},
		{ID: "beam_4", Last: 1483, NSapwood: intPtr(16)},
	}
}

func TestCombine_JointPMFSumsToOne(t *testing.T) {
	combiner := newTestCombiner(t)

	model, err := combiner.Combine(roofGroup(), defaultCombineOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, model.PMF.Sum(), 1e-9)
	require.NotNil(t, model.HDI)
	assert.GreaterOrEqual(t, model.HDI.Mass, 0.954)
	assert.Len(t, model.ASeries, 4)
}

func TestCombine_OrderInvariant(t *testing.T) {
	combiner := newTestCombiner(t)
	series := roofGroup()

	forward, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	reversed := []dendro.SeriesRecord{series[3], series[1], series[0], series[2]}
	backward, err := combiner.Combine(reversed, defaultCombineOptions())
	require.NoError(t, err)

	assert.Equal(t, forward.PMF, backward.PMF)
	assert.Equal(t, forward.HDI, backward.HDI)
	assert.InDelta(t, forward.ACombined, backward.ACombined, 1e-9)
	assert.Equal(t, forward.ASeries, backward.ASeries)
}

// Five waney-edge timbers with the same felling year collapse to a point
// mass with full agreement.
func TestCombine_AllExactAgreeing(t *testing.T) {
	combiner := newTestCombiner(t)

	series := make([]dendro.SeriesRecord, 5)
	for i := range series {
		series[i] = dendro.SeriesRecord{ID: string(rune('a' + i)), Last: 1503, WaneyEdge: true}
	}

	model, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	require.Len(t, model.PMF.Entries, 1)
	assert.Equal(t, 1503, model.PMF.Entries[0].Year)
	assert.InDelta(t, 1.0, model.PMF.Entries[0].Prob, 1e-12)
	assert.InDelta(t, 100, model.ACombined, 1e-9)
	assert.False(t, model.Unsound)
	for id, a := range model.ASeries {
		assert.InDelta(t, 100, a, 1e-9, "series %s", id)
	}
}

func TestCombine_ConflictingExactYearsFatal(t *testing.T) {
	combiner := newTestCombiner(t)

	series := []dendro.SeriesRecord{
		{ID: "a", Last: 1503, WaneyEdge: true},
		{ID: "b", Last: 1512, WaneyEdge: true},
	}
	_, err := combiner.Combine(series, defaultCombineOptions())
	assert.ErrorIs(t, err, core.ErrConflictingFellingYears)

	exact := 1600
	series = []dendro.SeriesRecord{
		{ID: "a", FellingYear: &exact},
		{ID: "b", Last: 1612, WaneyEdge: true},
	}
	_, err = combiner.Combine(series, defaultCombineOptions())
	assert.ErrorIs(t, err, core.ErrConflictingFellingYears)
}

func TestCombine_SelfCombinationAgreesWithItself(t *testing.T) {
	combiner := newTestCombiner(t)

	series := []dendro.SeriesRecord{
		{ID: "s1", Last: 1480, NSapwood: intPtr(12)},
		{ID: "s2", Last: 1480, NSapwood: intPtr(12)},
	}
	model, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	assert.False(t, model.Unsound)
	assert.Greater(t, model.ACombined, DefaultAgreementThreshold)
	assert.LessOrEqual(t, model.ACombined, 100+1e-9)
	for id, a := range model.ASeries {
		assert.InDelta(t, model.ACombined, a, 1e-9, "identical series must score identically (%s)", id)
	}
}

// Supports a century apart share no possible felling year: the result is
// flagged, not an error, and every series scores zero agreement.
func TestCombine_DisjointSupports(t *testing.T) {
	combiner := newTestCombiner(t)

	series := []dendro.SeriesRecord{
		{ID: "early", Last: 1300, NSapwood: intPtr(12)},
		{ID: "late", Last: 1700, NSapwood: intPtr(12)},
	}
	model, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	assert.True(t, model.Unsound)
	assert.Empty(t, model.PMF.Entries)
	assert.Nil(t, model.HDI)
	assert.InDelta(t, 0, model.ACombined, 1e-12)
	assert.True(t, dendro.HasCode(model.Diagnostics, dendro.CodeZeroOverlap))
}

// Two series whose supports barely overlap: the combination is flagged
// unsound and the per-series indices point at the stray.
func TestCombine_OutlierIdentifiedByAgreement(t *testing.T) {
	combiner := newTestCombiner(t)

	series := []dendro.SeriesRecord{
		{ID: "anchor", Last: 1480, NSapwood: intPtr(12)},
		{ID: "stray", Last: 1445, NSapwood: intPtr(12)},
	}
	model, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	assert.True(t, model.Unsound)
	assert.Less(t, model.ACombined, DefaultAgreementThreshold)
	assert.True(t, dendro.HasCode(model.Diagnostics, dendro.CodeLowAgreement))
	assert.Less(t, model.ASeries["stray"], 10.0)
	assert.Greater(t, model.ASeries["anchor"], model.ASeries["stray"])
}

func TestCombine_TerminusPostQuemContributes(t *testing.T) {
	combiner := newTestCombiner(t)

	series := append(roofGroup(), dendro.SeriesRecord{ID: "heartwood_only", Last: 1481})
	model, err := combiner.Combine(series, defaultCombineOptions())
	require.NoError(t, err)

	assert.True(t, dendro.HasCode(model.Diagnostics, dendro.CodeNoSapwood))
	assert.Equal(t, dendro.KindTerminusPostQuem, model.Kinds["heartwood_only"])

	// The constraint zeroes every year before its last ring.
	for _, e := range model.PMF.Entries {
		if e.Year < 1481 {
			assert.InDelta(t, 0, e.Prob, 1e-12, "year %d should be excluded", e.Year)
		}
	}
	assert.Contains(t, model.ASeries, "heartwood_only")
}

func TestCombine_FatalInputs(t *testing.T) {
	combiner := newTestCombiner(t)

	_, err := combiner.Combine(nil, defaultCombineOptions())
	assert.ErrorIs(t, err, core.ErrEmptyCombination)

	opts := defaultCombineOptions()
	opts.CredMass = 1
	_, err = combiner.Combine(roofGroup(), opts)
	assert.ErrorIs(t, err, core.ErrInvalidCredMass)

	opts = defaultCombineOptions()
	opts.DensFun = "triangular"
	_, err = combiner.Combine(roofGroup(), opts)
	assert.ErrorIs(t, err, core.ErrUnsupportedFamily)

	// Only terminus-post-quem series: no PMF can anchor an axis.
	_, err = combiner.Combine([]dendro.SeriesRecord{{ID: "a", Last: 1400}}, defaultCombineOptions())
	assert.Error(t, err)
}
