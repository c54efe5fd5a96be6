package prl

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/katalvlaran/partree/grid"
)

// Label prefixes: Up (1 bit), Up-one-right (2), Max+1 (3), explicit (3).
const (
	prefixUp       = 0b0
	prefixUpRight  = 0b10
	prefixMaxPlus  = 0b110
	prefixExplicit = 0b111
)

// upRight returns the label found by scanning right along the row above,
// starting from the cell directly above pos, for the first label different
// from it. ok is false on the first row or when the scan leaves the row.
func upRight(data []grid.Label, pos, width int) (grid.Label, bool) {
	if pos < width {
		return 0, false
	}
	up := pos - width
	end := pos - pos%width // start of the current row = end of the row above
	for i := up + 1; i < end; i++ {
		if data[i] != data[up] {
			return data[i], true
		}
	}
	return 0, false
}

// Encode writes r as a PRL stream.
// Returns ErrLabelTooWide if a forced NumBits cannot hold the largest label.
// Complexity: O(P).
func Encode(w io.Writer, r *grid.Raster, opts ...Option) error {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	data := r.Data()
	var maxLabel grid.Label
	for _, l := range data {
		maxLabel = max(maxLabel, l)
	}
	numBits := o.NumBits
	if numBits == 0 {
		numBits = bitsNeeded(maxLabel)
	}
	if numBits > 64 || bitsNeeded(maxLabel) > numBits {
		return fmt.Errorf("%w: label %d, num_bits %d", ErrLabelTooWide, maxLabel, numBits)
	}
	if o.Compression != CompressionNone && o.Compression != CompressionZstd {
		return fmt.Errorf("%w: compression mode %d", ErrUnsupported, o.Compression)
	}

	h := Header{
		Magic:      Magic,
		FileType:   FileTypePartition,
		Compressed: o.Compression,
		DataType:   dataTypeFor(numBits),
		NumBits:    numBits,
	}
	for _, s := range r.Sizes() {
		h.Sizes = append(h.Sizes, uint64(s))
	}

	body := encodeBody(data, r.Size(0), numBits)
	if o.Compression == CompressionZstd {
		var err error
		if body, err = compress(body); err != nil {
			return fmt.Errorf("prl: compress body: %w", err)
		}
	}
	if _, err := w.Write(h.AppendBinary(make([]byte, 0, h.Size()))); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}

func encodeBody(data []grid.Label, width int, numBits uint8) []byte {
	var bw BitWriter
	var maxSeen grid.Label
	for pos := 0; pos < len(data); {
		label := data[pos]
		n := 1
		for pos+n < len(data) && data[pos+n] == label && n < MaxRun {
			n++
		}

		// Cheapest valid predictor, in decoder priority order.
		if pos >= width && data[pos-width] == label {
			bw.WriteBits(prefixUp, 1)
		} else if l, ok := upRight(data, pos, width); ok && l == label {
			bw.WriteBits(prefixUpRight, 2)
		} else if maxSeen < math.MaxUint64 && label == maxSeen+1 {
			bw.WriteBits(prefixMaxPlus, 3)
			maxSeen = label
		} else {
			bw.WriteBits(prefixExplicit, 3)
			bw.WriteBits(label, numBits)
			maxSeen = max(maxSeen, label)
		}

		if n > 4 {
			bw.WriteBits(1, 1)
			bw.WriteBits(uint64(n), 8)
		} else {
			bw.WriteBits(0, 1)
			bw.WriteBits(uint64(n-1), 2)
		}
		pos += n
	}
	return bw.Bytes()
}

// Decode reads a PRL stream into a new raster shaped by its header.
// Returns ErrCorruptPartitionFile for bad headers and undecodable or
// truncated bodies, ErrUnsupported for unknown compression modes.
// Complexity: O(P).
func Decode(r io.Reader) (*grid.Raster, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	switch h.Compressed {
	case CompressionNone:
	case CompressionZstd:
		if body, err = decompress(body, maxBodyLen(h)); err != nil {
			return nil, fmt.Errorf("%w: decompress body: %w", ErrCorruptPartitionFile, err)
		}
	default:
		return nil, fmt.Errorf("%w: compression mode %d", ErrUnsupported, h.Compressed)
	}

	// Every record takes at least 4 bits and fills at most MaxRun cells, so
	// a body too short for the header is rejected before the raster exists.
	if uint64(len(body))*8/4*MaxRun < h.Len() {
		return nil, fmt.Errorf("%w: %d body bytes cannot fill %d cells",
			ErrCorruptPartitionFile, len(body), h.Len())
	}

	sizes := make([]int, len(h.Sizes))
	for i, s := range h.Sizes {
		sizes[i] = int(s)
	}
	out, err := grid.New(sizes...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptPartitionFile, err)
	}
	if err := decodeBody(NewBitReader(body), out.Data(), sizes[0], h.NumBits); err != nil {
		return nil, err
	}
	return out, nil
}

// maxBodyLen bounds the body of a valid stream for h: one record per cell,
// each an explicit label with a long run length.
func maxBodyLen(h Header) uint64 {
	return (h.Len()*(3+uint64(h.NumBits)+9)+7)/8 + 1
}

// runReader reads the bit body and remembers the first error, so the
// decoding loop can check it once per record.
type runReader struct {
	br  *BitReader
	err error
}

func (rr *runReader) bits(n uint8) uint64 {
	if rr.err != nil {
		return 0
	}
	v, err := rr.br.ReadBits(n)
	if err != nil {
		rr.err = err
	}
	return v
}

// bit returns the next bit, or 1 once the stream has failed so that
// prefix parsing falls through without reading further.
func (rr *runReader) bit() uint64 {
	if rr.err != nil {
		return 1
	}
	return rr.bits(1)
}

func decodeBody(br *BitReader, data []grid.Label, width int, numBits uint8) error {
	rr := &runReader{br: br}
	var maxSeen grid.Label
	for pos := 0; pos < len(data); {
		var label grid.Label
		switch {
		case rr.bit() == 0: // Up
			if pos < width {
				return fmt.Errorf("%w: up prediction on first row at %d", ErrCorruptPartitionFile, pos)
			}
			label = data[pos-width]
		case rr.bit() == 0: // Up-one-right
			l, ok := upRight(data, pos, width)
			if !ok {
				return fmt.Errorf("%w: up-one-right prediction off the row at %d", ErrCorruptPartitionFile, pos)
			}
			label = l
		case rr.bit() == 0: // Max+1
			if maxSeen == math.MaxUint64 {
				return fmt.Errorf("%w: max+1 overflow at %d", ErrCorruptPartitionFile, pos)
			}
			maxSeen++
			label = maxSeen
		default:
			label = rr.bits(numBits)
			maxSeen = max(maxSeen, label)
		}

		var n int
		if rr.bit() == 1 {
			n = int(rr.bits(8))
			if n == 0 && rr.err == nil {
				return fmt.Errorf("%w: empty run at %d", ErrCorruptPartitionFile, pos)
			}
		} else {
			n = int(rr.bits(2)) + 1
		}
		if rr.err != nil {
			return fmt.Errorf("%w: truncated at bit %d: %w", ErrCorruptPartitionFile, br.Tell(), rr.err)
		}
		if pos+n > len(data) {
			return fmt.Errorf("%w: run of %d overflows raster at %d", ErrCorruptPartitionFile, n, pos)
		}
		for i := range n {
			data[pos+i] = label
		}
		pos += n
	}
	return nil
}
