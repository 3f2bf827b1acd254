package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"scanoutliers/pkg/scanerr"
)

func TestPercentileLinear(t *testing.T) {
	values := []float64{15, 20, 35, 40, 50}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 15},
		{25, 20},
		{40, 29},
		{50, 35},
		{75, 40},
		{90, 46},
		{100, 50},
	}

	for _, tt := range tests {
		got, err := Percentile(values, tt.p)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "percentile %v", tt.p)
	}
}

func TestPercentileUnsortedInputUntouched(t *testing.T) {
	values := []float64{3, 1, 2}
	got, err := Percentile(values, 50)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentileSingleValue(t *testing.T) {
	for _, p := range []float64{0, 33.3, 100} {
		got, err := Percentile([]float64{7.5}, p)
		require.NoError(t, err)
		assert.Equal(t, 7.5, got)
	}
}

func TestPercentileInvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
	}{
		{"empty", nil, 50},
		{"below range", []float64{1, 2}, -0.1},
		{"above range", []float64{1, 2}, 100.5},
		{"nan percentile", []float64{1, 2}, math.NaN()},
		{"nan value", []float64{1, math.NaN()}, 50},
		{"infinite value", []float64{1, math.Inf(1)}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Percentile(tt.values, tt.p)
			assert.ErrorIs(t, err, scanerr.ErrInvalidArgument)
		})
	}
}

func TestPercentilesMatchesSingle(t *testing.T) {
	values := []float64{4, 8, 15, 16, 23, 42}
	many, err := Percentiles(values, 10, 50, 90)
	require.NoError(t, err)
	require.Len(t, many, 3)

	for i, p := range []float64{10, 50, 90} {
		one, err := Percentile(values, p)
		require.NoError(t, err)
		assert.Equal(t, one, many[i])
	}
}

// TestPercentileProperties checks range and monotonicity on random sequences
func TestPercentileProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64() * 100
		}
		lo, hi := floats.Min(values), floats.Max(values)

		prev := math.Inf(-1)
		for p := 0.0; p <= 100; p += 2.5 {
			got, err := Percentile(values, p)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, got, lo)
			assert.LessOrEqual(t, got, hi)
			assert.GreaterOrEqual(t, got, prev, "percentile must not decrease at p=%v", p)
			prev = got
		}
	}
}
