package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"scanoutliers/pkg/scanerr"
	"scanoutliers/pkg/volume"
)

// GlobalIntensityMetric computes the SPM global value of every frame
type GlobalIntensityMetric struct {
	// Workers is the number of frames processed concurrently,
	// all CPUs when below 1
	Workers int
}

// Kind implements Metric
func (m *GlobalIntensityMetric) Kind() Kind { return KindSPMGlobal }

// Reduce implements Metric
func (m *GlobalIntensityMetric) Reduce(s *volume.Series) ([]float64, error) {
	return spmGlobalSeries(s, m.Workers)
}

// SPMGlobal calculates the SPM global metric for the voxels of one volume:
// the mean of all voxels strictly greater than one eighth of the volume
// mean. A volume where no voxel passes that threshold (for example an all
// zero volume) has no defined value and yields ErrDegenerateInput.
func SPMGlobal(vol []float64) (float64, error) {
	if len(vol) == 0 {
		return 0, fmt.Errorf("empty volume: %w", scanerr.ErrInvalidArgument)
	}

	threshold := stat.Mean(vol, nil) / 8

	var sum float64
	var count int
	for _, v := range vol {
		if v > threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("no voxel above threshold %g: %w", threshold, scanerr.ErrDegenerateInput)
	}
	return sum / float64(count), nil
}

// SPMGlobalSeries calculates the SPM global metric for each frame of s, in
// temporal order.
func SPMGlobalSeries(s *volume.Series) ([]float64, error) {
	return spmGlobalSeries(s, 0)
}

func spmGlobalSeries(s *volume.Series, workers int) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Frames < 1 {
		return nil, fmt.Errorf("series has no frames: %w", scanerr.ErrInvalidArgument)
	}

	values := make([]float64, s.Frames)
	err := forEachFrame(s.Frames, workers, func(t int) error {
		g, err := SPMGlobal(s.Frame(t))
		if err != nil {
			return fmt.Errorf("frame %d: %w", t, err)
		}
		values[t] = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}
