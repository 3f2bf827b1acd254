package nifti

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"scanoutliers/pkg/volume"
)

// voxOffset is where Write places voxel data: the header plus an empty
// 4 byte extension block
const voxOffset = headerSize + 4

// Write encodes s as a little endian float32 NIfTI-1 image
func Write(w io.Writer, s *volume.Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, d := range []int{s.Width, s.Height, s.Depth, s.Frames} {
		if d > math.MaxInt16 {
			return fmt.Errorf("dimension %d does not fit a NIfTI-1 header", d)
		}
	}

	h := header{
		SizeofHdr: headerSize,
		Regular:   'r',
		Datatype:  DTFloat32,
		Bitpix:    32,
		VoxOffset: voxOffset,
		SclSlope:  1,
		XYZTUnits: unitsMM | unitsSec,
		Magic:     magicSingle,
	}
	h.Dim = [8]int16{4, int16(s.Width), int16(s.Height), int16(s.Depth), int16(s.Frames), 1, 1, 1}
	h.Pixdim = [8]float32{1, 1, 1, 1, 1, 0, 0, 0}
	if s.VoxelSize.X > 0 && s.VoxelSize.Y > 0 && s.VoxelSize.Z > 0 {
		h.Pixdim[1] = float32(s.VoxelSize.X)
		h.Pixdim[2] = float32(s.VoxelSize.Y)
		h.Pixdim[3] = float32(s.VoxelSize.Z)
	}
	if s.RepetitionTime > 0 {
		h.Pixdim[4] = float32(s.RepetitionTime)
	}
	copy(h.Descrip[:], "scanoutliers")

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := bw.Write(make([]byte, voxOffset-headerSize)); err != nil {
		return fmt.Errorf("writing extension flag: %w", err)
	}

	var word [4]byte
	for _, v := range s.Data {
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(v)))
		if _, err := bw.Write(word[:]); err != nil {
			return fmt.Errorf("writing voxels: %w", err)
		}
	}
	return bw.Flush()
}

// WriteFile writes s to path, gzip compressed when path ends in .gz
func WriteFile(path string, s *volume.Series) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return Write(file, s)
	}

	zw := gzip.NewWriter(file)
	if err := Write(zw, s); err != nil {
		return err
	}
	return zw.Close()
}
