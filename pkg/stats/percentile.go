// Package stats implements the order statistics used to classify scan
// measures: linear-interpolation percentiles and the interquartile range
// outlier rule.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"scanoutliers/pkg/scanerr"
)

// Percentile returns the p-th percentile of values using linear
// interpolation between the two closest order statistics: the rank is
// p/100*(n-1) and the result lies between the values at its floor and
// ceiling. values is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	ps, err := Percentiles(values, p)
	if err != nil {
		return 0, err
	}
	return ps[0], nil
}

// Percentiles computes several percentiles of values with a single sort.
// Results are returned in the order of ps.
func Percentiles(values []float64, ps ...float64) ([]float64, error) {
	if err := checkMeasures(values); err != nil {
		return nil, err
	}
	for _, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return nil, fmt.Errorf("percentile %v outside [0, 100]: %w", p, scanerr.ErrInvalidArgument)
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	result := make([]float64, len(ps))
	for i, p := range ps {
		result[i] = sortedPercentile(sorted, p)
	}
	return result, nil
}

// sortedPercentile interpolates the p-th percentile of already sorted data
func sortedPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if upper >= n {
		upper = n - 1
	}

	return lerp(sorted[lower], sorted[upper], rank-float64(lower))
}

// lerp interpolates from a towards b. Anchoring on the nearer endpoint keeps
// the result inside [a, b] when a <= b.
func lerp(a, b, t float64) float64 {
	d := b - a
	if t < 0.5 {
		return a + d*t
	}
	return b - d*(1-t)
}

// checkMeasures rejects empty and non-finite inputs
func checkMeasures(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("empty sequence: %w", scanerr.ErrInvalidArgument)
	}
	if floats.HasNaN(values) {
		return fmt.Errorf("sequence contains NaN: %w", scanerr.ErrInvalidArgument)
	}
	for i, v := range values {
		if math.IsInf(v, 0) {
			return fmt.Errorf("sequence value %d is infinite: %w", i, scanerr.ErrInvalidArgument)
		}
	}
	return nil
}
