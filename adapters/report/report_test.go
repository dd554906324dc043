package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/app"
	"fellingdate/domain/dendro"
)

func intPtr(v int) *int { return &v }

func sampleIntervalResults() []*app.IntervalResult {
	return []*app.IntervalResult{
		{
			SeriesID: "trs_1",
			Kind:     dendro.KindDatedRange,
			HDI:      &dendro.HDIInterval{Lower: 1234, Upper: intPtr(1250), Mass: 0.958},
		},
		{
			SeriesID: "no_sw",
			Kind:     dendro.KindTerminusPostQuem,
		},
	}
}

func TestIntervalRows(t *testing.T) {
	rows := IntervalRows(sampleIntervalResults())
	require.Len(t, rows, 2)

	assert.Equal(t, "1234", rows[0].Lower)
	assert.Equal(t, "1250", rows[0].Upper)
	assert.Equal(t, "0.958", rows[0].Mass)
	assert.Equal(t, dendro.KindDatedRange, rows[0].Kind)

	assert.Equal(t, "-", rows[1].Lower)
	assert.Equal(t, "-", rows[1].Upper)
	assert.Equal(t, dendro.KindTerminusPostQuem, rows[1].Kind)
}

func TestCombineRows(t *testing.T) {
	model := &dendro.CombinedModel{
		HDI:       &dendro.HDIInterval{Lower: 1480, Upper: intPtr(1492), Mass: 0.961},
		ACombined: 78.4,
		ASeries:   map[string]float64{"beam_1": 81.2, "beam_2": 75.6},
		Kinds: map[string]dendro.SeriesKind{
			"beam_1": dendro.KindDatedRange,
			"beam_2": dendro.KindDatedRange,
		},
	}
	rows := CombineRows(model)
	require.Len(t, rows, 3)

	// Per-series rows come sorted, the joint row last.
	assert.Equal(t, "beam_1", rows[0].SeriesID)
	assert.Equal(t, "81.2", rows[0].Agreement)
	assert.Equal(t, "beam_2", rows[1].SeriesID)

	joint := rows[2]
	assert.Equal(t, "combined", joint.SeriesID)
	assert.Equal(t, "1480", joint.Lower)
	assert.Equal(t, "1492", joint.Upper)
	assert.Equal(t, "78.4", joint.Agreement)
}

func TestTable(t *testing.T) {
	out := Table(IntervalRows(sampleIntervalResults()))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SERIES")
	assert.Contains(t, lines[0], "AGREEMENT")
	assert.Contains(t, lines[1], "trs_1")
	assert.Contains(t, lines[2], "terminus_post_quem")
}

func TestMarkdown(t *testing.T) {
	diags := []dendro.Diagnostic{
		dendro.Warning(dendro.CodeNoSapwood, "series no_sw: no sapwood observed"),
	}
	md := Markdown("Felling dates", IntervalRows(sampleIntervalResults()), diags)

	assert.Contains(t, md, "## Felling dates")
	assert.Contains(t, md, "| trs_1 | 1234 | 1250 |")
	assert.Contains(t, md, "### Diagnostics")
	assert.Contains(t, md, "NO_SAPWOOD")

	// No diagnostics, no section.
	plain := Markdown("Felling dates", nil, nil)
	assert.NotContains(t, plain, "Diagnostics")
}

func TestHTML(t *testing.T) {
	md := Markdown("Felling dates", IntervalRows(sampleIntervalResults()), nil)
	out := string(HTML(md))

	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "trs_1")
}
