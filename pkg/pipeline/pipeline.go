package pipeline

import (
	"fmt"

	"scanoutliers/pkg/metrics"
	"scanoutliers/pkg/stats"
	"scanoutliers/pkg/volume"
)

// Params holds the detection parameters
type Params struct {
	// Metric selects the measure computed from the series
	Metric metrics.Kind

	// Proportion multiplies the IQR to form the outlier thresholds.
	// stats.DefaultProportion is the conventional value.
	Proportion float64

	// NumCores specifies how many frames are reduced in parallel.
	// Values below 1 use all available CPUs.
	NumCores int
}

// DefaultParams returns dvars detection with the conventional IQR proportion
func DefaultParams() Params {
	return Params{
		Metric:     metrics.KindDVARS,
		Proportion: stats.DefaultProportion,
	}
}

// Result holds the measures computed for one series and their classification
type Result struct {
	// Metric is the metric that produced Measures
	Metric metrics.Kind

	// Measures has one value per frame, or per frame transition for dvars
	Measures []float64

	// Mask is true where the measure at the same index is an outlier
	Mask []bool

	// Bounds is the inclusion band the mask was built from
	Bounds stats.Bounds
}

// Outliers returns the indices of flagged measures
func (r *Result) Outliers() []int {
	return stats.Indices(r.Mask)
}

// Loader loads a series from a file path
type Loader interface {
	Load(path string) (*volume.Series, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(path string) (*volume.Series, error)

// Load calls f(path)
func (f LoaderFunc) Load(path string) (*volume.Series, error) {
	return f(path)
}

// Pipeline reduces a scan with the selected metric and flags outlying
// measures with the IQR rule. A Pipeline holds only its parameters, so one
// value can serve concurrent calls.
type Pipeline struct {
	params Params
}

// NewPipeline creates a pipeline with the provided parameters
func NewPipeline(params Params) *Pipeline {
	return &Pipeline{params: params}
}

// Params returns the pipeline parameters
func (p *Pipeline) Params() Params {
	return p.params
}

// Run computes the metric over s and classifies the resulting measures
func (p *Pipeline) Run(s *volume.Series) (*Result, error) {
	metric, err := metrics.ForKind(p.params.Metric, p.params.NumCores)
	if err != nil {
		return nil, err
	}
	return RunMetric(metric, s, p.params.Proportion)
}

// RunFile loads the image at path and runs the pipeline on it. Errors from
// the loader are returned as they are.
func (p *Pipeline) RunFile(loader Loader, path string) (*Result, error) {
	s, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Run(s)
}

// RunMetric reduces s with metric and flags outliers in the measures. It
// accepts any Metric, including ones defined outside this module.
func RunMetric(metric metrics.Metric, s *volume.Series, proportion float64) (*Result, error) {
	measures, err := metric.Reduce(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", metric.Kind(), err)
	}

	mask, bounds, err := stats.DetectWithBounds(measures, proportion)
	if err != nil {
		return nil, fmt.Errorf("%s outliers: %w", metric.Kind(), err)
	}

	return &Result{
		Metric:   metric.Kind(),
		Measures: measures,
		Mask:     mask,
		Bounds:   bounds,
	}, nil
}
