// Package scanerr defines the error kinds shared by the scan outlier packages.
// Call sites wrap these sentinels with context, so callers should match them
// with errors.Is.
package scanerr

import "errors"

var (
	// ErrInvalidArgument reports a violated input contract: an empty sequence,
	// a percentile outside [0, 100], a negative proportion, too few frames.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateInput reports data a metric cannot summarise, such as a
	// volume where no voxel exceeds the global intensity threshold.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrLoadFailure reports an image that could not be read or decoded.
	ErrLoadFailure = errors.New("load failure")
)
