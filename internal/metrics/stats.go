// Package metrics provides the descriptive statistics used for multi-sample
// runs: means, spreads, and IQR-based outlier detection over repeated
// execution timings.
package metrics

import (
	"math"
	"sort"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance computes the population variance of a float64 slice.
// Returns 0 for empty input.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// ConfidenceInterval95 returns the 95% confidence interval (low, high)
// using the normal approximation (z=1.96). Returns (mean, mean) when
// fewer than 2 data points are available.
func ConfidenceInterval95(values []float64) (float64, float64) {
	n := len(values)
	if n < 2 {
		m := Mean(values)
		return m, m
	}
	m := Mean(values)
	// sample standard deviation (Bessel's correction)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	sampleSD := math.Sqrt(sumSq / float64(n-1))
	margin := 1.96 * sampleSD / math.Sqrt(float64(n))
	return m - margin, m + margin
}

// Quartiles returns the first and third quartiles using linear
// interpolation between closest ranks. The input is not modified.
func Quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

// OutlierBounds holds the IQR fences used to flag outliers.
type OutlierBounds struct {
	Q1    float64
	Q3    float64
	IQR   float64
	Lower float64
	Upper float64
}

// DetectOutliers flags values outside the 1.5*IQR fences. With fewer than 4
// samples the quartiles are too unstable to trust, so nothing is flagged.
// The returned indices refer to positions in the input slice.
func DetectOutliers(values []float64) (outliers []int, bounds OutlierBounds) {
	if len(values) < 4 {
		return nil, OutlierBounds{}
	}

	q1, q3 := Quartiles(values)
	iqr := q3 - q1
	bounds = OutlierBounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - 1.5*iqr,
		Upper: q3 + 1.5*iqr,
	}

	for i, v := range values {
		if v < bounds.Lower || v > bounds.Upper {
			outliers = append(outliers, i)
		}
	}
	return outliers, bounds
}

// TrimOutliers returns the values with IQR outliers removed. When trimming
// would discard everything the original slice is returned unchanged.
func TrimOutliers(values []float64) []float64 {
	outliers, _ := DetectOutliers(values)
	if len(outliers) == 0 {
		return values
	}

	skip := make(map[int]bool, len(outliers))
	for _, i := range outliers {
		skip[i] = true
	}

	kept := make([]float64, 0, len(values)-len(outliers))
	for i, v := range values {
		if !skip[i] {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return values
	}
	return kept
}

// percentile computes the p-quantile of ascending-sorted data by linear
// interpolation.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
