package dendro

import (
	"fmt"
	"sort"
)

// DiagnosticLevel classifies the severity of a non-fatal condition.
type DiagnosticLevel string

const (
	LevelInfo    DiagnosticLevel = "info"
	LevelWarning DiagnosticLevel = "warning"
)

// Diagnostic codes for degraded-but-usable results. Callers detect
// degradation by code, not by parsing messages.
const (
	CodeNoSapwood       = "NO_SAPWOOD"
	CodeUnknownDataset  = "UNKNOWN_DATASET"
	CodeCountAboveRange = "COUNT_ABOVE_RANGE"
	CodeDegeneratePMF   = "DEGENERATE_PMF"
	CodeLowAgreement    = "LOW_AGREEMENT"
	CodeZeroOverlap     = "ZERO_OVERLAP"
)

// Diagnostic is the side channel for recoverable conditions: the result it
// accompanies is always usable without inspecting it.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Code, d.Message)
}

// Warning builds a warning-level diagnostic.
func Warning(code, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Level: LevelWarning, Code: code, Message: fmt.Sprintf(format, args...)}
}

// HasCode reports whether any diagnostic in the slice carries the given code.
func HasCode(diags []Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

// SapwoodDataset is an empirical histogram of observed sapwood-ring counts
// with provenance metadata. Immutable after registration.
type SapwoodDataset struct {
	Name      string      `json:"name"`
	Histogram map[int]int `json:"histogram"` // ring count -> observed frequency
	Region    string      `json:"region"`
	Citation  string      `json:"citation"`
}

// SampleSize returns the total number of observations in the histogram.
func (ds SapwoodDataset) SampleSize() int {
	n := 0
	for _, freq := range ds.Histogram {
		n += freq
	}
	return n
}

// Range returns the minimum and maximum observed ring counts.
func (ds SapwoodDataset) Range() (min, max int) {
	first := true
	for count := range ds.Histogram {
		if first {
			min, max = count, count
			first = false
			continue
		}
		if count < min {
			min = count
		}
		if count > max {
			max = count
		}
	}
	return min, max
}

// Counts returns the histogram keys in ascending order.
func (ds SapwoodDataset) Counts() []int {
	counts := make([]int, 0, len(ds.Histogram))
	for c := range ds.Histogram {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	return counts
}

// SeriesKind is the interpretation flag attached to a per-series estimate.
type SeriesKind string

const (
	KindDatedRange       SeriesKind = "dated_range"
	KindTerminusPostQuem SeriesKind = "terminus_post_quem"
	KindExactFellingYear SeriesKind = "exact_felling_year"
)

// SeriesRecord is the input unit for combination and aggregation.
// NSapwood nil means no sapwood observed (terminus post quem only).
// Last 0 means undated/relative. FellingYear, when set, is an exact
// felling year; WaneyEdge true means Last itself is the felling year.
type SeriesRecord struct {
	ID          string `json:"id"`
	Last        int    `json:"last"`
	NSapwood    *int   `json:"n_sapwood,omitempty"`
	WaneyEdge   bool   `json:"waneyedge"`
	FellingYear *int   `json:"felling_year,omitempty"`
}

// ExactYear returns the certain felling year for a waney-edge or
// exact-dated series, or false when the series is probabilistic.
func (r SeriesRecord) ExactYear() (int, bool) {
	if r.FellingYear != nil {
		return *r.FellingYear, true
	}
	if r.WaneyEdge && r.Last != 0 {
		return r.Last, true
	}
	return 0, false
}

// Kind classifies the series for reporting.
func (r SeriesRecord) Kind() SeriesKind {
	if _, ok := r.ExactYear(); ok {
		return KindExactFellingYear
	}
	if r.NSapwood == nil {
		return KindTerminusPostQuem
	}
	return KindDatedRange
}

// HDIInterval is the shortest contiguous window of a discrete PMF holding at
// least the requested credible mass. Upper is nil when the PMF degenerated
// to fewer than two usable points.
type HDIInterval struct {
	Lower    int     `json:"lower"`
	Upper    *int    `json:"upper,omitempty"`
	Mass     float64 `json:"mass"` // achieved credible mass, >= requested
	CredMass float64 `json:"cred_mass"`
	Dataset  string  `json:"dataset,omitempty"`
	Family   string  `json:"family,omitempty"`
}

// CombinedModel is the joint felling-date estimate for a group of series
// believed felled together.
type CombinedModel struct {
	PMF         FellingDatePMF       `json:"pmf"`
	HDI         *HDIInterval         `json:"hdi,omitempty"`
	ACombined   float64              `json:"a_combined"` // percent
	ASeries     map[string]float64   `json:"a_series"`   // per-series agreement, percent
	Kinds       map[string]SeriesKind `json:"kinds"`
	Unsound     bool                 `json:"unsound"` // ACombined below the critical threshold
	Threshold   float64              `json:"threshold"`
	Diagnostics []Diagnostic         `json:"diagnostics,omitempty"`
}

// SummedPMF is a summed probability density over independent felling-date
// estimates. Density integrates to the number of contributing series, not 1.
type SummedPMF struct {
	Years       []int        `json:"years"`
	Density     []float64    `json:"density"`
	N           int          `json:"n"` // contributing series
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Total returns the integral of the summed curve.
func (s SummedPMF) Total() float64 {
	total := 0.0
	for _, d := range s.Density {
		total += d
	}
	return total
}
