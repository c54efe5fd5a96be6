package prl

import (
	"errors"
	"math/bits"
)

// Sentinel errors for PRL coding.
var (
	// ErrCorruptPartitionFile indicates a bad magic number, file type, header
	// field or an undecodable bit stream.
	ErrCorruptPartitionFile = errors.New("prl: corrupt partition file")

	// ErrUnsupported indicates a valid header asking for a feature this
	// package does not implement (unknown compression mode).
	ErrUnsupported = errors.New("prl: unsupported partition file")

	// ErrLabelTooWide indicates a label that does not fit in num_bits.
	ErrLabelTooWide = errors.New("prl: label does not fit in num_bits")
)

const (
	// Magic is the fixed first field of every PRL file.
	Magic uint16 = 255
	// FileTypePartition is the only file type tag in use.
	FileTypePartition uint8 = 1
	// MaxRun is the longest run a single record can describe.
	MaxRun = 255
	// maxDims bounds ndims when reading a header.
	maxDims = 3
)

// Compression modes for the header's compressed field.
const (
	CompressionNone uint8 = 0
	CompressionZstd uint8 = 1
)

// DataType tags for the header's datatype field. They describe the
// narrowest unsigned integer holding every label; decoding always yields
// 64-bit labels.
const (
	DataTypeUint8  uint8 = 1
	DataTypeUint16 uint8 = 2
	DataTypeUint32 uint8 = 4
	DataTypeUint64 uint8 = 8
)

// Options tunes Encode.
type Options struct {
	// Compression selects the body compression mode.
	Compression uint8
	// NumBits forces the explicit-label width; 0 derives it from the largest label.
	NumBits uint8
}

// Option configures Encode via functional arguments.
type Option func(*Options)

// DefaultOptions returns an uncompressed body with derived num_bits.
func DefaultOptions() Options {
	return Options{Compression: CompressionNone}
}

// WithCompression enables or disables zstd compression of the body.
func WithCompression(on bool) Option {
	return func(o *Options) {
		if on {
			o.Compression = CompressionZstd
		} else {
			o.Compression = CompressionNone
		}
	}
}

// WithNumBits forces the explicit-label width (1..64).
func WithNumBits(n uint8) Option {
	return func(o *Options) { o.NumBits = n }
}

// bitsNeeded returns how many bits represent v; at least 1.
func bitsNeeded(v uint64) uint8 {
	return uint8(max(1, bits.Len64(v)))
}

// dataTypeFor returns the narrowest DataType tag for labels of numBits bits.
func dataTypeFor(numBits uint8) uint8 {
	switch {
	case numBits <= 8:
		return DataTypeUint8
	case numBits <= 16:
		return DataTypeUint16
	case numBits <= 32:
		return DataTypeUint32
	default:
		return DataTypeUint64
	}
}
