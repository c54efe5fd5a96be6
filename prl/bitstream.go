package prl

import (
	"fmt"
	"io"
)

// BitWriter packs values most-significant bit first.
type BitWriter struct {
	buf  []byte
	cur  byte
	nCur uint8 // bits held in cur (0..7)
	bits uint64
}

// WriteBits appends the low n bits of v, highest first. n is at most 64.
func (bw *BitWriter) WriteBits(v uint64, n uint8) {
	for i := int(n) - 1; i >= 0; i-- {
		bw.cur = bw.cur<<1 | byte(v>>uint(i)&1)
		bw.nCur++
		if bw.nCur == 8 {
			bw.buf = append(bw.buf, bw.cur)
			bw.cur, bw.nCur = 0, 0
		}
	}
	bw.bits += uint64(n)
}

// Len returns the number of bits written.
func (bw *BitWriter) Len() uint64 { return bw.bits }

// Bytes flushes any partial byte, zero-padded on the right, and returns the
// packed stream. Further writes start a fresh byte.
func (bw *BitWriter) Bytes() []byte {
	if bw.nCur > 0 {
		bw.buf = append(bw.buf, bw.cur<<(8-bw.nCur))
		bw.bits += uint64(8 - bw.nCur)
		bw.cur, bw.nCur = 0, 0
	}
	return bw.buf
}

// BitReader unpacks values most-significant bit first from a byte slice.
type BitReader struct {
	data []byte
	pos  uint64 // absolute bit position
}

// NewBitReader reads from data.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Remaining returns the number of unread bits, padding included.
func (br *BitReader) Remaining() uint64 { return uint64(len(br.data))*8 - br.pos }

// Tell returns the absolute bit position of the next read.
func (br *BitReader) Tell() uint64 { return br.pos }

// ReadBits returns the next n bits (n ≤ 64) in the low bits of the result.
// It returns io.ErrUnexpectedEOF, reading nothing, when fewer than n bits remain.
func (br *BitReader) ReadBits(n uint8) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("prl: read of %d bits", n)
	}
	if br.Remaining() < uint64(n) {
		return 0, io.ErrUnexpectedEOF
	}
	var v uint64
	for i := uint8(0); i < n; i++ {
		b := br.data[br.pos>>3]
		v = v<<1 | uint64(b>>(7-br.pos&7)&1)
		br.pos++
	}
	return v, nil
}

// ReadBit is ReadBits(1).
func (br *BitReader) ReadBit() (uint64, error) { return br.ReadBits(1) }
