// Package nifti reads and writes single-file NIfTI-1 images (.nii, .nii.gz)
// as volume series.
package nifti

import (
	"bytes"
	"encoding/binary"
)

// headerSize is the fixed size of a NIfTI-1 header in bytes
const headerSize = 348

// Datatype codes from the NIfTI-1 standard
const (
	DTUint8   int16 = 2
	DTInt16   int16 = 4
	DTInt32   int16 = 8
	DTFloat32 int16 = 16
	DTFloat64 int16 = 64
	DTInt8    int16 = 256
	DTUint16  int16 = 512
	DTUint32  int16 = 768
	DTInt64   int16 = 1024
	DTUint64  int16 = 1280
)

// Units stored in xyzt_units
const (
	unitsMeter  = 1
	unitsMM     = 2
	unitsMicron = 3
	unitsSec    = 8
	unitsMsec   = 16
	unitsUsec   = 24
)

var (
	magicSingle = [4]byte{'n', '+', '1', 0}
	magicPair   = [4]byte{'n', 'i', '1', 0}
)

// header mirrors the on-disk NIfTI-1 header field by field. encoding/binary
// reads it without padding, so the struct is exactly headerSize bytes.
type header struct {
	SizeofHdr    int32
	DataType     [10]byte
	DBName       [18]byte
	Extents      int32
	SessionError int16
	Regular      byte
	DimInfo      byte

	Dim        [8]int16
	IntentP1   float32
	IntentP2   float32
	IntentP3   float32
	IntentCode int16
	Datatype   int16
	Bitpix     int16
	SliceStart int16
	Pixdim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	SliceEnd   int16
	SliceCode  byte
	XYZTUnits  byte

	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32

	Descrip   [80]byte
	AuxFile   [24]byte
	QformCode int16
	SformCode int16
	QuaternB  float32
	QuaternC  float32
	QuaternD  float32
	QoffsetX  float32
	QoffsetY  float32
	QoffsetZ  float32
	SrowX     [4]float32
	SrowY     [4]float32
	SrowZ     [4]float32

	IntentName [16]byte
	Magic      [4]byte
}

// byteOrder detects the header endianness from sizeof_hdr
func byteOrder(raw []byte) (binary.ByteOrder, bool) {
	switch {
	case binary.LittleEndian.Uint32(raw[:4]) == headerSize:
		return binary.LittleEndian, true
	case binary.BigEndian.Uint32(raw[:4]) == headerSize:
		return binary.BigEndian, true
	default:
		return nil, false
	}
}

// decodeHeader parses a raw header block
func decodeHeader(raw []byte, order binary.ByteOrder) (*header, error) {
	var h header
	if err := binary.Read(bytes.NewReader(raw), order, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// bytesPerVoxel returns the storage size of a datatype, zero if unsupported
func bytesPerVoxel(datatype int16) int {
	switch datatype {
	case DTUint8, DTInt8:
		return 1
	case DTInt16, DTUint16:
		return 2
	case DTInt32, DTUint32, DTFloat32:
		return 4
	case DTFloat64, DTInt64, DTUint64:
		return 8
	default:
		return 0
	}
}

// spatialScale converts the spatial unit code to millimetres
func spatialScale(units byte) float64 {
	switch units & 0x07 {
	case unitsMeter:
		return 1000
	case unitsMicron:
		return 0.001
	default:
		return 1
	}
}

// timeScale converts the temporal unit code to seconds
func timeScale(units byte) float64 {
	switch units & 0x38 {
	case unitsMsec:
		return 0.001
	case unitsUsec:
		return 1e-6
	default:
		return 1
	}
}
