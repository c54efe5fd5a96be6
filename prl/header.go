package prl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
)

// Header is the fixed part of a PRL file.
type Header struct {
	Magic      uint16
	FileType   uint8
	Compressed uint8
	DataType   uint8
	Sizes      []uint64
	NumBits    uint8
}

// Len returns the number of cells the header describes.
func (h Header) Len() uint64 {
	n := uint64(1)
	for _, s := range h.Sizes {
		n *= s
	}
	return n
}

// Size returns the encoded header size in bytes.
func (h Header) Size() int { return 2 + 1 + 1 + 1 + 8 + 8*len(h.Sizes) + 1 }

// AppendBinary appends the encoded header to b.
func (h Header) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint16(b, h.Magic)
	b = append(b, h.FileType, h.Compressed, h.DataType)
	b = binary.LittleEndian.AppendUint64(b, uint64(len(h.Sizes)))
	for _, s := range h.Sizes {
		b = binary.LittleEndian.AppendUint64(b, s)
	}
	return append(b, h.NumBits)
}

// ReadHeader decodes and validates a header.
// Returns ErrCorruptPartitionFile for a wrong magic number, a wrong file type
// or an impossible geometry, wrapping io errors from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	var fixed [13]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return h, fmt.Errorf("%w: header: %w", ErrCorruptPartitionFile, err)
	}
	h.Magic = binary.LittleEndian.Uint16(fixed[0:2])
	if h.Magic != Magic {
		return h, fmt.Errorf("%w: bad magic %d", ErrCorruptPartitionFile, h.Magic)
	}
	h.FileType = fixed[2]
	if h.FileType != FileTypePartition {
		return h, fmt.Errorf("%w: bad file type %d", ErrCorruptPartitionFile, h.FileType)
	}
	h.Compressed = fixed[3]
	h.DataType = fixed[4]
	ndims := binary.LittleEndian.Uint64(fixed[5:13])
	if ndims == 0 || ndims > maxDims {
		return h, fmt.Errorf("%w: %d dimensions", ErrCorruptPartitionFile, ndims)
	}

	rest := make([]byte, 8*ndims+1)
	if _, err := io.ReadFull(r, rest); err != nil {
		return h, fmt.Errorf("%w: header: %w", ErrCorruptPartitionFile, err)
	}
	h.Sizes = make([]uint64, ndims)
	total := uint64(1)
	for i := range h.Sizes {
		s := binary.LittleEndian.Uint64(rest[8*i:])
		hi, lo := bits.Mul64(total, s)
		if s == 0 || hi != 0 || lo > math.MaxInt32 {
			return h, fmt.Errorf("%w: bad size %v", ErrCorruptPartitionFile, s)
		}
		h.Sizes[i] = s
		total = lo
	}
	h.NumBits = rest[len(rest)-1]
	if h.NumBits == 0 || h.NumBits > 64 {
		return h, fmt.Errorf("%w: num_bits %d", ErrCorruptPartitionFile, h.NumBits)
	}
	return h, nil
}
