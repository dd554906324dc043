package dendro

// PMFEntry is one lattice point of a felling-date probability mass function.
// Year carries the ring count itself when the series is undated (relative).
type PMFEntry struct {
	Year      int     `json:"year"`
	RingCount int     `json:"ring_count"`
	Prob      float64 `json:"prob"`
}

// FellingDatePMF is an ordered discrete probability mass function over
// calendar years (or ring counts when Relative). Years increase strictly
// by 1 per entry before truncation; after truncation the leading and
// trailing negligible entries are gone but the axis stays ordered.
type FellingDatePMF struct {
	Series   string     `json:"series,omitempty"`
	Relative bool       `json:"relative,omitempty"`
	Entries  []PMFEntry `json:"entries"`
}

// Sum returns the total probability mass.
func (p FellingDatePMF) Sum() float64 {
	total := 0.0
	for _, e := range p.Entries {
		total += e.Prob
	}
	return total
}

// Normalize scales the entries so they sum to 1. A zero-mass PMF is
// returned unchanged; callers treat that as degenerate.
func (p FellingDatePMF) Normalize() FellingDatePMF {
	total := p.Sum()
	if total <= 0 {
		return p
	}
	out := FellingDatePMF{Series: p.Series, Relative: p.Relative, Entries: make([]PMFEntry, len(p.Entries))}
	for i, e := range p.Entries {
		e.Prob /= total
		out.Entries[i] = e
	}
	return out
}

// Truncate drops entries whose probability falls below eps. This is a
// deliberate tail cut keeping the HDI search numerically stable.
func (p FellingDatePMF) Truncate(eps float64) FellingDatePMF {
	out := FellingDatePMF{Series: p.Series, Relative: p.Relative}
	for _, e := range p.Entries {
		if e.Prob >= eps {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Years returns the year axis of the PMF.
func (p FellingDatePMF) Years() []int {
	years := make([]int, len(p.Entries))
	for i, e := range p.Entries {
		years[i] = e.Year
	}
	return years
}

// ProbAt returns the probability mass at the given year, 0 when the year
// lies outside the support.
func (p FellingDatePMF) ProbAt(year int) float64 {
	for _, e := range p.Entries {
		if e.Year == year {
			return e.Prob
		}
	}
	return 0
}

// Mode returns the year carrying the largest probability mass. The earliest
// such year wins on ties. Ok is false for an empty PMF.
func (p FellingDatePMF) Mode() (year int, ok bool) {
	if len(p.Entries) == 0 {
		return 0, false
	}
	best := p.Entries[0]
	for _, e := range p.Entries[1:] {
		if e.Prob > best.Prob {
			best = e
		}
	}
	return best.Year, true
}

// PointMass builds a Dirac PMF concentrated at the given year.
func PointMass(series string, year int) FellingDatePMF {
	return FellingDatePMF{
		Series:  series,
		Entries: []PMFEntry{{Year: year, Prob: 1}},
	}
}

// StepMass builds a flat one-sided PMF: zero before from, uniform over
// [from, to]. It models a terminus post quem on a bounded axis.
func StepMass(series string, from, to int) FellingDatePMF {
	if to < from {
		to = from
	}
	n := to - from + 1
	p := FellingDatePMF{Series: series, Entries: make([]PMFEntry, n)}
	mass := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		p.Entries[i] = PMFEntry{Year: from + i, Prob: mass}
	}
	return p
}

// UnionAxis returns the contiguous year axis spanning the supports of all
// given PMFs. Ok is false when every PMF is empty.
func UnionAxis(pmfs []FellingDatePMF) (years []int, ok bool) {
	first := true
	var lo, hi int
	for _, p := range pmfs {
		for _, e := range p.Entries {
			if first {
				lo, hi = e.Year, e.Year
				first = false
				continue
			}
			if e.Year < lo {
				lo = e.Year
			}
			if e.Year > hi {
				hi = e.Year
			}
		}
	}
	if first {
		return nil, false
	}
	years = make([]int, hi-lo+1)
	for i := range years {
		years[i] = lo + i
	}
	return years, true
}

// Aligned projects the PMF onto the given axis, padding missing years with
// zero probability.
func (p FellingDatePMF) Aligned(axis []int) []float64 {
	byYear := make(map[int]float64, len(p.Entries))
	for _, e := range p.Entries {
		byYear[e.Year] = e.Prob
	}
	out := make([]float64, len(axis))
	for i, y := range axis {
		out[i] = byYear[y]
	}
	return out
}
