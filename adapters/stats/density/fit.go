package density

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

// Fitted is a parametric density fitted to an empirical sapwood histogram.
// Parameter semantics depend on the family:
//
//	lognormal: Param1 = log-mean, Param2 = log-sd
//	normal:    Param1 = mean,     Param2 = sd
//	weibull:   Param1 = shape k,  Param2 = scale lambda
//	gamma:     Param1 = shape,    Param2 = rate
type Fitted struct {
	Family     Family
	Param1     float64
	Param2     float64
	Dataset    string
	SampleMin  int
	SampleMax  int
	SampleSize int
}

// Density evaluates the fitted family's density at ring count x.
func (f Fitted) Density(x float64) float64 {
	if x <= 0 && f.Family != Normal {
		return 0
	}
	switch f.Family {
	case Lognormal:
		return distuv.LogNormal{Mu: f.Param1, Sigma: f.Param2}.Prob(x)
	case Normal:
		return distuv.Normal{Mu: f.Param1, Sigma: f.Param2}.Prob(x)
	case Weibull:
		return distuv.Weibull{K: f.Param1, Lambda: f.Param2}.Prob(x)
	case Gamma:
		return distuv.Gamma{Alpha: f.Param1, Beta: f.Param2}.Prob(x)
	}
	return 0
}

// Fit estimates the family's two parameters from the dataset histogram by
// weighted maximum likelihood. The histogram stands in for the raw sample:
// each (count, freq) bin contributes freq observations at value count.
func Fit(ds dendro.SapwoodDataset, fam Family) (Fitted, error) {
	xs, ws := histogramObservations(ds)
	if len(xs) == 0 {
		return Fitted{}, core.ErrEmptyDataset
	}

	min, max := ds.Range()
	fitted := Fitted{
		Family:     fam,
		Dataset:    ds.Name,
		SampleMin:  min,
		SampleMax:  max,
		SampleSize: ds.SampleSize(),
	}

	switch fam {
	case Lognormal:
		fitted.Param1, fitted.Param2 = logMoments(xs, ws)
	case Normal:
		fitted.Param1, fitted.Param2 = moments(xs, ws)
	case Weibull:
		fitted.Param1, fitted.Param2 = weibullMLE(xs, ws)
	case Gamma:
		fitted.Param1, fitted.Param2 = gammaMLE(xs, ws)
	default:
		return Fitted{}, core.NewUnsupportedFamilyError(fam.String())
	}

	if fitted.Param2 <= 0 || math.IsNaN(fitted.Param1) || math.IsNaN(fitted.Param2) {
		return Fitted{}, core.ErrEmptyDataset
	}
	return fitted, nil
}

// histogramObservations flattens the histogram into positive values and
// weights. Non-positive ring counts cannot carry mass under the log-based
// families and are skipped.
func histogramObservations(ds dendro.SapwoodDataset) (xs, ws []float64) {
	for _, count := range ds.Counts() {
		freq := ds.Histogram[count]
		if count <= 0 || freq <= 0 {
			continue
		}
		xs = append(xs, float64(count))
		ws = append(ws, float64(freq))
	}
	return xs, ws
}

func moments(xs, ws []float64) (mean, sd float64) {
	var n, sum float64
	for i, x := range xs {
		n += ws[i]
		sum += ws[i] * x
	}
	mean = sum / n
	var ss float64
	for i, x := range xs {
		ss += ws[i] * (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / n)
}

func logMoments(xs, ws []float64) (mu, sigma float64) {
	logs := make([]float64, len(xs))
	for i, x := range xs {
		logs[i] = math.Log(x)
	}
	return moments(logs, ws)
}

// gammaMLE solves for the shape by Newton iteration on
// g(a) = log(a) - digamma(a) - s, with s = log(mean) - mean(log x).
// The rate follows as shape/mean.
func gammaMLE(xs, ws []float64) (shape, rate float64) {
	mean, _ := moments(xs, ws)
	logMean, _ := logMoments(xs, ws)
	s := math.Log(mean) - logMean
	if s <= 0 {
		// Degenerate sample (all mass at one value); fall back to a tight fit.
		s = 1e-8
	}

	// Standard closed-form starting point.
	shape = (3 - s + math.Sqrt((s-3)*(s-3)+24*s)) / (12 * s)
	for i := 0; i < 50; i++ {
		g := math.Log(shape) - mathext.Digamma(shape) - s
		// Numerical derivative of g; trigamma is not exported by mathext.
		h := 1e-6 * shape
		dg := (math.Log(shape+h) - mathext.Digamma(shape+h) - (math.Log(shape-h) - mathext.Digamma(shape-h))) / (2 * h)
		step := g / dg
		next := shape - step
		if next <= 0 {
			next = shape / 2
		}
		if math.Abs(next-shape) < 1e-10*shape {
			shape = next
			break
		}
		shape = next
	}
	return shape, shape / mean
}

// weibullMLE solves the shape equation by fixed-point iteration:
// 1/k = sum(w x^k log x)/sum(w x^k) - mean(log x).
func weibullMLE(xs, ws []float64) (shape, scale float64) {
	logMean, _ := logMoments(xs, ws)

	k := 1.2
	for i := 0; i < 200; i++ {
		var num, den, n float64
		for j, x := range xs {
			xk := math.Pow(x, k)
			num += ws[j] * xk * math.Log(x)
			den += ws[j] * xk
			n += ws[j]
		}
		inv := num/den - logMean
		if inv <= 0 {
			break
		}
		next := 1 / inv
		if math.Abs(next-k) < 1e-10*k {
			k = next
			break
		}
		// Damped update keeps the iteration stable for peaked histograms.
		k = 0.5*k + 0.5*next
	}

	var sum, n float64
	for j, x := range xs {
		sum += ws[j] * math.Pow(x, k)
		n += ws[j]
	}
	return k, math.Pow(sum/n, 1/k)
}
