package report

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"fellingdate/app"
	"fellingdate/domain/dendro"
)

// Row is one reported series summary.
type Row struct {
	SeriesID  string
	Lower     string
	Upper     string
	Mass      string
	Kind      dendro.SeriesKind
	Agreement string // per-series A_i for combined models, "-" otherwise
}

// IntervalRows flattens single-series estimates into report rows.
func IntervalRows(results []*app.IntervalResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		row := Row{SeriesID: res.SeriesID, Kind: res.Kind, Lower: "-", Upper: "-", Mass: "-", Agreement: "-"}
		if res.HDI != nil {
			row.Lower = fmt.Sprintf("%d", res.HDI.Lower)
			if res.HDI.Upper != nil {
				row.Upper = fmt.Sprintf("%d", *res.HDI.Upper)
			}
			row.Mass = fmt.Sprintf("%.3f", res.HDI.Mass)
		}
		rows = append(rows, row)
	}
	return rows
}

// CombineRows flattens a combined model into per-series rows followed by
// the joint estimate.
func CombineRows(model *dendro.CombinedModel) []Row {
	ids := make([]string, 0, len(model.Kinds))
	for id := range model.Kinds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]Row, 0, len(ids)+1)
	for _, id := range ids {
		row := Row{SeriesID: id, Kind: model.Kinds[id], Lower: "-", Upper: "-", Mass: "-", Agreement: "-"}
		if a, ok := model.ASeries[id]; ok {
			row.Agreement = fmt.Sprintf("%.1f", a)
		}
		rows = append(rows, row)
	}

	joint := Row{SeriesID: "combined", Kind: "combined", Lower: "-", Upper: "-", Mass: "-",
		Agreement: fmt.Sprintf("%.1f", model.ACombined)}
	if model.HDI != nil {
		joint.Lower = fmt.Sprintf("%d", model.HDI.Lower)
		if model.HDI.Upper != nil {
			joint.Upper = fmt.Sprintf("%d", *model.HDI.Upper)
		}
		joint.Mass = fmt.Sprintf("%.3f", model.HDI.Mass)
	}
	return append(rows, joint)
}

// Table renders rows as an aligned plain-text table.
func Table(rows []Row) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tLOWER\tUPPER\tMASS\tTYPE\tAGREEMENT")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.SeriesID, r.Lower, r.Upper, r.Mass, r.Kind, r.Agreement)
	}
	w.Flush()
	return sb.String()
}
