package nifti

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"scanoutliers/pkg/scanerr"
	"scanoutliers/pkg/volume"
)

// maxVoxels caps the voxel count a header may declare, 4 GiB of float64
const maxVoxels = 1 << 29

// chunkVoxels is the number of voxels decoded per read
const chunkVoxels = 1 << 16

// loadError wraps a failure as ErrLoadFailure
func loadError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{scanerr.ErrLoadFailure}, args...)...)
}

// Load reads the NIfTI-1 image at path. Gzip compressed files are detected
// from their content, not their extension.
func Load(path string) (*volume.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, loadError("%w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, loadError("%w", err)
	}

	s, err := read(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read decodes a single-file NIfTI-1 image from r. A 3D image becomes a
// series with one frame. Scaled integer data is returned with scl_slope and
// scl_inter applied.
func Read(r io.Reader) (*volume.Series, error) {
	return read(r, -1)
}

// read decodes an image from r. size is the length of an uncompressed
// stream, or negative when unknown.
func read(r io.Reader, size int64) (*volume.Series, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		size = -1
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, loadError("gzip: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, loadError("reading header: %w", err)
	}
	order, ok := byteOrder(raw)
	if !ok {
		return nil, loadError("not a NIfTI-1 header")
	}
	h, err := decodeHeader(raw, order)
	if err != nil {
		return nil, loadError("decoding header: %w", err)
	}

	switch h.Magic {
	case magicSingle:
	case magicPair:
		return nil, loadError("header/image pairs are not supported")
	default:
		return nil, loadError("bad magic %q", h.Magic[:])
	}

	offset := float64(h.VoxOffset)
	if math.IsNaN(offset) || offset < headerSize || offset > math.MaxInt32 {
		return nil, loadError("vox_offset %v out of range", h.VoxOffset)
	}
	n, err := voxelCount(h)
	if err != nil {
		return nil, err
	}
	bpv := bytesPerVoxel(h.Datatype)
	if size >= 0 && int64(n)*int64(bpv) > size-int64(offset) {
		return nil, loadError("header declares %d voxels (%d bytes), file holds %d bytes of voxel data",
			n, int64(n)*int64(bpv), max(size-int64(offset), 0))
	}

	s, err := newSeries(h)
	if err != nil {
		return nil, err
	}

	// Skip extensions up to the voxel data
	if _, err := io.CopyN(io.Discard, br, int64(offset)-headerSize); err != nil {
		return nil, loadError("seeking to voxel data: %w", err)
	}

	buf := make([]byte, min(len(s.Data), chunkVoxels)*bpv)
	for i := 0; i < len(s.Data); i += chunkVoxels {
		out := s.Data[i:min(i+chunkVoxels, len(s.Data))]
		chunk := buf[:len(out)*bpv]
		if _, err := io.ReadFull(br, chunk); err != nil {
			return nil, loadError("reading %d voxels: %w", len(s.Data), err)
		}
		decodeVoxels(chunk, h.Datatype, order, out)
	}
	applyScaling(s.Data, h.SclSlope, h.SclInter)

	return s, nil
}

// voxelCount returns the number of voxels declared by h, rejecting
// malformed dimensions and counts above maxVoxels.
func voxelCount(h *header) (int, error) {
	ndim := int(h.Dim[0])
	if ndim < 1 || ndim > 7 {
		return 0, loadError("dim[0] = %d out of range", ndim)
	}
	if bytesPerVoxel(h.Datatype) == 0 {
		return 0, loadError("unsupported datatype %d", h.Datatype)
	}

	// Each dim is below 1<<15, so the product stays far from overflow
	// while it is at most maxVoxels.
	n := uint64(1)
	for i := 1; i <= ndim; i++ {
		if h.Dim[i] < 1 {
			return 0, loadError("dim[%d] = %d", i, h.Dim[i])
		}
		n *= uint64(h.Dim[i])
		if n > maxVoxels {
			return 0, loadError("dimensions %v exceed %d voxels", h.Dim[1:ndim+1], maxVoxels)
		}
	}
	return int(n), nil
}

// newSeries allocates the series described by h, whose dimensions have
// already passed voxelCount
func newSeries(h *header) (*volume.Series, error) {
	ndim := int(h.Dim[0])
	dims := [7]int{1, 1, 1, 1, 1, 1, 1}
	for i := 0; i < ndim; i++ {
		dims[i] = int(h.Dim[i+1])
	}
	for i := 4; i < 7; i++ {
		if dims[i] != 1 {
			return nil, loadError("dimension %d has size %d, only 3D and 4D images are supported", i+1, dims[i])
		}
	}

	s, err := volume.NewSeries(dims[0], dims[1], dims[2], dims[3])
	if err != nil {
		return nil, loadError("%w", err)
	}

	mm := spatialScale(h.XYZTUnits)
	s.VoxelSize.X = math.Abs(float64(h.Pixdim[1])) * mm
	s.VoxelSize.Y = math.Abs(float64(h.Pixdim[2])) * mm
	s.VoxelSize.Z = math.Abs(float64(h.Pixdim[3])) * mm
	if ndim >= 4 {
		s.RepetitionTime = float64(h.Pixdim[4]) * timeScale(h.XYZTUnits)
	}
	return s, nil
}

// decodeVoxels converts raw voxel bytes to float64
func decodeVoxels(buf []byte, datatype int16, order binary.ByteOrder, out []float64) {
	switch datatype {
	case DTUint8:
		for i := range out {
			out[i] = float64(buf[i])
		}
	case DTInt8:
		for i := range out {
			out[i] = float64(int8(buf[i]))
		}
	case DTInt16:
		for i := range out {
			out[i] = float64(int16(order.Uint16(buf[2*i:])))
		}
	case DTUint16:
		for i := range out {
			out[i] = float64(order.Uint16(buf[2*i:]))
		}
	case DTInt32:
		for i := range out {
			out[i] = float64(int32(order.Uint32(buf[4*i:])))
		}
	case DTUint32:
		for i := range out {
			out[i] = float64(order.Uint32(buf[4*i:]))
		}
	case DTFloat32:
		for i := range out {
			out[i] = float64(math.Float32frombits(order.Uint32(buf[4*i:])))
		}
	case DTFloat64:
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(buf[8*i:]))
		}
	case DTInt64:
		for i := range out {
			out[i] = float64(int64(order.Uint64(buf[8*i:])))
		}
	case DTUint64:
		for i := range out {
			out[i] = float64(order.Uint64(buf[8*i:]))
		}
	}
}

// applyScaling applies scl_slope and scl_inter. A zero or non-finite slope
// means the data is stored unscaled.
func applyScaling(data []float64, slope, inter float32) {
	m, b := float64(slope), float64(inter)
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return
	}
	if math.IsNaN(b) || math.IsInf(b, 0) {
		b = 0
	}
	if m == 1 && b == 0 {
		return
	}
	for i, v := range data {
		data[i] = v*m + b
	}
}
