// Package volume holds the in-memory image types consumed by the scan metrics.
package volume

import (
	"fmt"

	"scanoutliers/pkg/scanerr"
)

// Series represents a 4D image: an ordered sequence of 3D volumes sharing
// the same grid. Frames are stored back to back in Data, which matches the
// on-disk order of NIfTI images.
type Series struct {
	// Data holds Frames volumes of Width*Height*Depth voxels each
	Data []float64

	// Width, Height, Depth are the spatial dimensions in voxels
	Width, Height, Depth int

	// Frames is the number of time points
	Frames int

	// VoxelSize is the physical size of each voxel in mm, zero when unknown
	VoxelSize struct {
		X, Y, Z float64
	}

	// RepetitionTime is the time between frames in seconds, zero when unknown
	RepetitionTime float64
}

// NewSeries allocates a zeroed series with the given dimensions
func NewSeries(width, height, depth, frames int) (*Series, error) {
	if width <= 0 || height <= 0 || depth <= 0 || frames < 0 {
		return nil, fmt.Errorf("series dimensions %dx%dx%dx%d: %w",
			width, height, depth, frames, scanerr.ErrInvalidArgument)
	}
	return &Series{
		Data:   make([]float64, width*height*depth*frames),
		Width:  width,
		Height: height,
		Depth:  depth,
		Frames: frames,
	}, nil
}

// FromFrames builds a series from equally sized 3D frames. The frame data is
// copied, so later changes to frames do not affect the series.
func FromFrames(width, height, depth int, frames ...[]float64) (*Series, error) {
	s, err := NewSeries(width, height, depth, len(frames))
	if err != nil {
		return nil, err
	}
	n := s.Voxels()
	for t, f := range frames {
		if len(f) != n {
			return nil, fmt.Errorf("frame %d has %d voxels, want %d: %w",
				t, len(f), n, scanerr.ErrInvalidArgument)
		}
		copy(s.Data[t*n:(t+1)*n], f)
	}
	return s, nil
}

// Voxels returns the number of voxels in one frame
func (s *Series) Voxels() int {
	return s.Width * s.Height * s.Depth
}

// Validate checks that Data agrees with the declared dimensions
func (s *Series) Validate() error {
	if s == nil {
		return fmt.Errorf("nil series: %w", scanerr.ErrInvalidArgument)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Depth <= 0 || s.Frames < 0 {
		return fmt.Errorf("series dimensions %dx%dx%dx%d: %w",
			s.Width, s.Height, s.Depth, s.Frames, scanerr.ErrInvalidArgument)
	}
	if want := s.Voxels() * s.Frames; len(s.Data) != want {
		return fmt.Errorf("series holds %d values, dimensions need %d: %w",
			len(s.Data), want, scanerr.ErrInvalidArgument)
	}
	return nil
}

// Frame returns the voxels of frame t. The returned slice shares storage
// with the series and must be treated as read-only.
func (s *Series) Frame(t int) []float64 {
	n := s.Voxels()
	return s.Data[t*n : (t+1)*n : (t+1)*n]
}
