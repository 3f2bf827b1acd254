// Package metrics reduces a 4D scan to one measure per frame (or per frame
// transition) so the measures can be screened for outliers.
package metrics

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"scanoutliers/pkg/scanerr"
	"scanoutliers/pkg/volume"
)

// Kind names a scan metric
type Kind string

const (
	// KindDVARS is the root mean square change between consecutive frames
	KindDVARS Kind = "dvars"

	// KindSPMGlobal is the mean intensity above one eighth of the volume mean
	KindSPMGlobal Kind = "spm-global"
)

// Kinds lists the supported metric kinds
func Kinds() []Kind {
	return []Kind{KindDVARS, KindSPMGlobal}
}

// ParseKind converts a metric name to a Kind
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (want one of %v): %w", name, Kinds(), scanerr.ErrInvalidArgument)
}

// Metric reduces a series to a measure sequence
type Metric interface {
	// Kind identifies the metric
	Kind() Kind

	// Reduce computes the measure sequence for s. The series is not modified.
	Reduce(s *volume.Series) ([]float64, error)
}

// ForKind returns the metric for kind. workers bounds the number of frames
// processed concurrently; values below 1 use all CPUs.
func ForKind(kind Kind, workers int) (Metric, error) {
	switch kind {
	case KindDVARS:
		return &DVARSMetric{Workers: workers}, nil
	case KindSPMGlobal:
		return &GlobalIntensityMetric{Workers: workers}, nil
	default:
		return nil, fmt.Errorf("unknown metric %q: %w", kind, scanerr.ErrInvalidArgument)
	}
}

// forEachFrame runs fn for indices 0..n-1 on at most workers goroutines.
// Each call owns its index, so callers write results without locking.
func forEachFrame(n, workers int, fn func(i int) error) error {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
