package prl_test

import (
	"bytes"
	"math"
	"math/rand"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/partree/grid"
	"github.com/katalvlaran/partree/prl"
)

// header builds the encoded header for an uncompressed stream.
func header(numBits uint8, sizes ...uint64) []byte {
	h := prl.Header{
		Magic:    prl.Magic,
		FileType: prl.FileTypePartition,
		DataType: prl.DataTypeUint8,
		Sizes:    sizes,
		NumBits:  numBits,
	}
	return h.AppendBinary(nil)
}

func encode(t *testing.T, r *grid.Raster, opts ...prl.Option) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, prl.Encode(&buf, r, opts...))
	return buf.Bytes()
}

func roundTrip(t *testing.T, r *grid.Raster, opts ...prl.Option) {
	t.Helper()
	got, err := prl.Decode(bytes.NewReader(encode(t, r, opts...)))
	require.NoError(t, err)
	require.Equal(t, r.Sizes(), got.Sizes())
	if diff := cmp.Diff(r.Data(), got.Data()); diff != "" {
		t.Fatalf("decoded labels mismatch (-want +got):\n%s", diff)
	}
}

// TestEncode_KnownStream pins the exact bytes for a 2×2 raster:
// explicit 0 run 2, then Max+1 run 2.
func TestEncode_KnownStream(t *testing.T) {
	r, err := grid.FromRows([][]grid.Label{{0, 0}, {1, 1}})
	require.NoError(t, err)

	want := append(header(1, 2, 2), 0b11100011, 0b10001000)
	require.Equal(t, want, encode(t, r))
}

// TestDecode_HandBuilt decodes a stream using every predictor.
func TestDecode_HandBuilt(t *testing.T) {
	// 3×3:
	//   5 5 7
	//   5 7 7
	//   8 8 8
	var bw prl.BitWriter
	bw.WriteBits(0b111, 3) // explicit 5
	bw.WriteBits(5, 4)
	bw.WriteBits(0b0, 1) // run 2
	bw.WriteBits(1, 2)
	bw.WriteBits(0b111, 3) // explicit 7
	bw.WriteBits(7, 4)
	bw.WriteBits(0b0, 1) // run 1
	bw.WriteBits(0, 2)
	bw.WriteBits(0b0, 1) // up: 5
	bw.WriteBits(0b0, 1) // run 1
	bw.WriteBits(0, 2)
	bw.WriteBits(0b10, 2) // up-one-right from (1,0): 7
	bw.WriteBits(0b0, 1)  // run 2
	bw.WriteBits(1, 2)
	bw.WriteBits(0b110, 3) // max+1: 8
	bw.WriteBits(0b0, 1)   // run 3
	bw.WriteBits(2, 2)

	stream := append(header(4, 3, 3), bw.Bytes()...)
	got, err := prl.Decode(bytes.NewReader(stream))
	require.NoError(t, err)
	require.Equal(t, [][]grid.Label{{5, 5, 7}, {5, 7, 7}, {8, 8, 8}}, got.Rows())
}

// TestRoundTrip covers shapes, dimensionalities and label ranges.
func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	random := func(maxLabel uint64, sizes ...int) *grid.Raster {
		r, err := grid.New(sizes...)
		require.NoError(t, err)
		data := r.Data()
		for i := range data {
			// blocky so that runs and Up predictions occur
			if i > 0 && rng.Intn(3) > 0 {
				data[i] = data[i-1]
				continue
			}
			data[i] = rng.Uint64()
			if maxLabel < math.MaxUint64 {
				data[i] %= maxLabel + 1
			}
		}
		return r
	}
	constant := func(l grid.Label, sizes ...int) *grid.Raster {
		r, err := grid.New(sizes...)
		require.NoError(t, err)
		for i := range r.Data() {
			r.Data()[i] = l
		}
		return r
	}

	cases := []struct {
		name string
		r    *grid.Raster
	}{
		{"1x1", constant(0, 1, 1)},
		{"1x1-Max", constant(math.MaxUint64, 1, 1)},
		{"Row", random(20, 700, 1)},
		{"Column", random(20, 1, 700)},
		{"LongRun", constant(3, 1000)},
		{"Square", random(10, 32, 32)},
		{"Wide", random(math.MaxUint32, 257, 9)},
		{"Huge", random(math.MaxUint64, 40, 40)},
		{"3D", random(50, 5, 4, 3)},
		{"LongColumn", random(20, 1, 70000)},
		{"LongConstantColumn", constant(9, 1, 70000)},
		{"WideRow", random(20, prl.MaxRun*300+1, 2)},
		{"WideConstantRow", constant(1, prl.MaxRun*4+1, 3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			roundTrip(t, tc.r)
			roundTrip(t, tc.r, prl.WithCompression(true))
		})
	}
}

// TestRoundTrip_Dense mirrors the leaves partition of a forest: labels
// appear as 0,1,2,... in raster order, so Max+1 dominates.
func TestRoundTrip_Dense(t *testing.T) {
	r, err := grid.New(16, 16)
	require.NoError(t, err)
	for i := range r.Data() {
		x, y := i%16, i/16
		r.Data()[i] = grid.Label(y/4*4 + x/4)
	}
	data := encode(t, r)
	require.Less(t, len(data), 80)
	roundTrip(t, r)
}

func TestEncode_NumBits(t *testing.T) {
	r, err := grid.FromRows([][]grid.Label{{0, 7}, {7, 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = prl.Encode(&buf, r, prl.WithNumBits(2))
	require.ErrorIs(t, err, prl.ErrLabelTooWide)

	data := encode(t, r, prl.WithNumBits(16))
	h, err := prl.ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	require.EqualValues(t, 16, h.NumBits)
	require.Equal(t, prl.DataTypeUint16, h.DataType)
	require.Equal(t, []uint64{2, 2}, h.Sizes)
	require.EqualValues(t, 4, h.Len())
	roundTrip(t, r, prl.WithNumBits(16))
}

// TestDecode_Corrupt covers the header and body failure modes.
func TestDecode_Corrupt(t *testing.T) {
	good := header(1, 2, 2)
	withByte := func(i int, b byte) []byte {
		out := bytes.Clone(good)
		out[i] = b
		return append(out, 0xE3, 0x88)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"ShortHeader", good[:7]},
		{"BadMagic", withByte(0, 0xFE)},
		{"BadFileType", withByte(2, 2)},
		{"ZeroDims", append(header(1), 0)},
		{"ZeroSize", append(header(1, 2, 0), 0)},
		{"ZeroNumBits", append(header(0, 2, 2), 0xE3, 0x88)},
		{"NoBody", good},
		{"TruncatedBody", append(bytes.Clone(good), 0xE3)},
		// explicit 0, long run of length 0
		{"ZeroRun", append(header(1, 1), 0b11101000, 0b00000000)},
		// explicit 0, run 2 on a single cell
		{"OverflowRun", append(header(1, 1), 0b11100010)},
		// Up at the first cell
		{"UpFirstRow", append(header(1, 2, 2), 0x00)},
		// explicit 0 run 2, then up-one-right over a uniform row
		{"UpRightOffRow", append(header(1, 2, 2), 0b11100011, 0b00000000)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := prl.Decode(bytes.NewReader(tc.data))
			require.ErrorIs(t, err, prl.ErrCorruptPartitionFile)
		})
	}
}

// allocated returns the bytes allocated while fn runs.
func allocated(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

// TestDecode_BodyTooShort: a header announcing a large raster followed by a
// tiny body fails without allocating the raster.
func TestDecode_BodyTooShort(t *testing.T) {
	cases := []struct {
		name  string
		sizes []uint64
		body  []byte
	}{
		{"Square", []uint64{8192, 8192}, []byte{0xE0}},
		{"Column", []uint64{1, 1 << 26}, []byte{0xE0}},
		{"Cube", []uint64{512, 512, 256}, []byte{0xE0, 0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stream := append(header(1, tc.sizes...), tc.body...)
			var err error
			n := allocated(func() {
				_, err = prl.Decode(bytes.NewReader(stream))
			})
			require.ErrorIs(t, err, prl.ErrCorruptPartitionFile)
			require.Less(t, n, uint64(1<<20))
		})
	}
}

// TestDecode_CompressedBodyLimit: a zstd frame inflating far past what the
// header allows is rejected as corrupt.
func TestDecode_CompressedBodyLimit(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	frame := enc.EncodeAll(make([]byte, 8<<20), nil)
	require.NoError(t, enc.Close())

	h := prl.Header{
		Magic:      prl.Magic,
		FileType:   prl.FileTypePartition,
		Compressed: prl.CompressionZstd,
		Sizes:      []uint64{4, 4},
		NumBits:    1,
	}
	stream := append(h.AppendBinary(nil), frame...)
	var derr error
	n := allocated(func() {
		_, derr = prl.Decode(bytes.NewReader(stream))
	})
	require.ErrorIs(t, derr, prl.ErrCorruptPartitionFile)
	require.Less(t, n, uint64(4<<20))
}

func TestDecode_UnknownCompression(t *testing.T) {
	h := prl.Header{
		Magic:      prl.Magic,
		FileType:   prl.FileTypePartition,
		Compressed: 7,
		Sizes:      []uint64{1},
		NumBits:    1,
	}
	_, err := prl.Decode(bytes.NewReader(append(h.AppendBinary(nil), 0xE0)))
	require.ErrorIs(t, err, prl.ErrUnsupported)
}

func TestFile_RoundTrip(t *testing.T) {
	r, err := grid.FromRows([][]grid.Label{{3, 3, 4}, {5, 4, 4}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "p.prl")

	require.NoError(t, prl.WriteFile(path, r, prl.WithCompression(true)))
	h, err := prl.ReadFileHeader(path)
	require.NoError(t, err)
	require.Equal(t, prl.CompressionZstd, h.Compressed)
	require.Equal(t, 2+3+8+16+1, h.Size())

	got, err := prl.ReadFile(path)
	require.NoError(t, err)
	require.True(t, r.Equal(got))

	_, err = prl.ReadFile(filepath.Join(t.TempDir(), "missing.prl"))
	require.Error(t, err)
}
