package stats

import (
	"fmt"
	"math"

	"scanoutliers/pkg/scanerr"
)

// DefaultProportion is the conventional IQR multiplier (Tukey's fences)
const DefaultProportion = 1.5

// Bounds describes the inclusion band computed from a measure sequence.
// A measure is an outlier when it is strictly above Upper or strictly
// below Lower.
type Bounds struct {
	Q1, Q3 float64
	IQR    float64
	Lower  float64
	Upper  float64
}

// Contains reports whether v lies inside the band, thresholds included
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// NewBounds computes the quartiles of measures and the band that extends
// proportion*IQR below Q1 and above Q3.
func NewBounds(measures []float64, proportion float64) (Bounds, error) {
	if math.IsNaN(proportion) || math.IsInf(proportion, 0) || proportion < 0 {
		return Bounds{}, fmt.Errorf("iqr proportion %v must be finite and non-negative: %w", proportion, scanerr.ErrInvalidArgument)
	}

	q, err := Percentiles(measures, 25, 75)
	if err != nil {
		return Bounds{}, err
	}

	iqr := q[1] - q[0]
	return Bounds{
		Q1:    q[0],
		Q3:    q[1],
		IQR:   iqr,
		Lower: q[0] - iqr*proportion,
		Upper: q[1] + iqr*proportion,
	}, nil
}

// Detect flags outliers in measures using the interquartile range rule.
//
// With Q1 and Q3 the 25th and 75th percentiles of measures, a value is an
// outlier when it is greater than Q3 + IQR*proportion or less than
// Q1 - IQR*proportion. Values exactly on a threshold are not outliers.
// The returned mask has the same length as measures.
func Detect(measures []float64, proportion float64) ([]bool, error) {
	mask, _, err := DetectWithBounds(measures, proportion)
	return mask, err
}

// DetectWithBounds is Detect that also returns the band used for the mask
func DetectWithBounds(measures []float64, proportion float64) ([]bool, Bounds, error) {
	b, err := NewBounds(measures, proportion)
	if err != nil {
		return nil, Bounds{}, err
	}

	mask := make([]bool, len(measures))
	for i, v := range measures {
		mask[i] = !b.Contains(v)
	}
	return mask, b, nil
}

// Indices returns the positions set in mask
func Indices(mask []bool) []int {
	var idx []int
	for i, flagged := range mask {
		if flagged {
			idx = append(idx, i)
		}
	}
	return idx
}
