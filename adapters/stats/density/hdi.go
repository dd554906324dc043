package density

import (
	"fmt"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

// massTolerance absorbs floating error when comparing cumulative mass
// against the requested credible mass.
const massTolerance = 1e-12

// HDI finds the shortest contiguous window of the ordered (year, prob)
// table whose cumulative probability reaches credMass. Ties between
// equal-span windows resolve to the earliest start. The input is expected
// to be ordered by year and (near-)normalized; the function never mutates
// it.
//
// Fewer than two usable points is a degraded condition, not an error: the
// interval comes back with a missing upper bound plus a warning
// diagnostic.
func HDI(points []dendro.PMFEntry, credMass float64) (dendro.HDIInterval, []dendro.Diagnostic, error) {
	if credMass <= 0 || credMass >= 1 {
		return dendro.HDIInterval{}, nil, core.NewInvalidCredMassError(credMass)
	}
	if len(points) == 0 {
		return dendro.HDIInterval{}, nil, fmt.Errorf("hdi: empty probability table")
	}

	if len(points) == 1 {
		diag := dendro.Warning(dendro.CodeDegeneratePMF,
			"probability mass collapsed to a single point at %d; upper bound undefined", points[0].Year)
		return dendro.HDIInterval{
			Lower:    points[0].Year,
			Upper:    nil,
			Mass:     points[0].Prob,
			CredMass: credMass,
		}, []dendro.Diagnostic{diag}, nil
	}

	// Prefix sums over the ordered table.
	prefix := make([]float64, len(points)+1)
	for i, pt := range points {
		prefix[i+1] = prefix[i] + pt.Prob
	}

	// Scan window spans from shortest to longest; the first hit is the
	// shortest window, and within a span the earliest start wins.
	n := len(points)
	for span := 1; span <= n; span++ {
		for start := 0; start+span <= n; start++ {
			mass := prefix[start+span] - prefix[start]
			if mass+massTolerance >= credMass {
				upper := points[start+span-1].Year
				return dendro.HDIInterval{
					Lower:    points[start].Year,
					Upper:    &upper,
					Mass:     mass,
					CredMass: credMass,
				}, nil, nil
			}
		}
	}

	// Total mass below credMass: the table was truncated harder than the
	// request allows. Return the full support, flagged.
	upper := points[n-1].Year
	diag := dendro.Warning(dendro.CodeDegeneratePMF,
		"total probability mass %.6f below requested credible mass %.3f; returning full support", prefix[n], credMass)
	return dendro.HDIInterval{
		Lower:    points[0].Year,
		Upper:    &upper,
		Mass:     prefix[n],
		CredMass: credMass,
	}, []dendro.Diagnostic{diag}, nil
}
