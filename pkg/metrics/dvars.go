package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"scanoutliers/pkg/scanerr"
	"scanoutliers/pkg/volume"
)

// DVARSMetric computes dvars with a bounded number of workers
type DVARSMetric struct {
	// Workers is the number of frame pairs processed concurrently,
	// all CPUs when below 1
	Workers int
}

// Kind implements Metric
func (m *DVARSMetric) Kind() Kind { return KindDVARS }

// Reduce implements Metric
func (m *DVARSMetric) Reduce(s *volume.Series) ([]float64, error) {
	return dvars(s, m.Workers)
}

// DVARS calculates the dvars metric of s.
//
// The dvars value between two volumes is the square root of the mean, over
// all voxels, of the squared voxel differences. The result has Frames-1
// values; value k describes the change from frame k to frame k+1.
func DVARS(s *volume.Series) ([]float64, error) {
	return dvars(s, 0)
}

func dvars(s *volume.Series, workers int) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Frames < 2 {
		return nil, fmt.Errorf("dvars needs at least 2 frames, got %d: %w", s.Frames, scanerr.ErrInvalidArgument)
	}

	// sqrt(sum(d^2)/n) == ||d||_2 / sqrt(n)
	norm := math.Sqrt(float64(s.Voxels()))
	values := make([]float64, s.Frames-1)
	err := forEachFrame(len(values), workers, func(k int) error {
		values[k] = floats.Distance(s.Frame(k+1), s.Frame(k), 2) / norm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}
