package bpt_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/partree/bpt"
	"github.com/katalvlaran/partree/grid"
	"github.com/katalvlaran/partree/prl"
)

// structure lists (child1, child2, parent) for every internal region.
func structure(f *bpt.Forest) [][3]bpt.Label {
	var out [][3]bpt.Label
	for reg := range f.Regions(bpt.NonLeaves) {
		c := reg.Children()
		out = append(out, [3]bpt.Label{c[0], c[1], reg.Label()})
	}
	return out
}

func requireSameForest(t *testing.T, want, got *bpt.Forest) {
	t.Helper()
	if diff := cmp.Diff(want.LeavesPartition().Data(), got.LeavesPartition().Data()); diff != "" {
		t.Fatalf("leaves mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.RootsPartition().Data(), got.RootsPartition().Data()); diff != "" {
		t.Fatalf("roots mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, structure(want), structure(got))
	require.Equal(t, want.MergeCount(), got.MergeCount())
}

// TestRaw_RoundTrip saves a partially merged forest and loads it back.
func TestRaw_RoundTrip(t *testing.T) {
	src, err := bpt.NewFromRaster(noise(t, 10, 8, 5, 11))
	require.NoError(t, err)
	mergeRandomly(t, src, src.Len()/2, 12, nil)

	dir := t.TempDir()
	part, merg := filepath.Join(dir, "leaves.raw"), filepath.Join(dir, "mergings.raw")
	require.NoError(t, src.SaveToFiles(part, merg))

	dst := bpt.New()
	require.NoError(t, dst.LoadFromFiles(part, merg))
	requireSameForest(t, src, dst)

	info, err := os.Stat(part)
	require.NoError(t, err)
	require.EqualValues(t, 8*(1+2+80), info.Size())
}

// TestRaw_AfterPrune reloads a forest whose leaves include a pruned region.
func TestRaw_AfterPrune(t *testing.T) {
	src := quad(t)
	require.NoError(t, src.PruneLabel(4))

	var part, merg bytes.Buffer
	require.NoError(t, src.WriteRaw(&part, &merg))
	require.EqualValues(t, 2, binary.LittleEndian.Uint64(merg.Bytes()))

	dst := bpt.New()
	require.NoError(t, dst.ReadRaw(&part, &merg))
	require.Equal(t, 3, dst.Count(bpt.Leaves))
	require.Equal(t, 2, dst.MergeCount())
	require.Equal(t, 1, dst.Count(bpt.Roots))

	// leaves 4,2,3 became 0,1,2 and parents 5,6 became 3,4
	require.Equal(t, []grid.Label{0, 0, 1, 2}, dst.LeavesPartition().Data())
	require.Equal(t, [][3]bpt.Label{{1, 2, 3}, {0, 3, 4}}, structure(dst))
	for old, want := range map[grid.Label]bpt.Label{4: 0, 2: 1, 3: 2, 5: 3, 6: 4} {
		got, ok := dst.Correspondence(old)
		require.True(t, ok)
		require.Equal(t, want, got, "old label %d", old)
	}
	require.Equal(t, []grid.Label{4, 4, 4, 4}, dst.RootsPartition().Data())
}

func TestRaw_Corrupt(t *testing.T) {
	src := quad(t)
	var part, merg bytes.Buffer
	require.NoError(t, src.WriteRaw(&part, &merg))

	u64 := func(vs ...uint64) []byte {
		var b []byte
		for _, v := range vs {
			b = binary.LittleEndian.AppendUint64(b, v)
		}
		return b
	}

	cases := []struct {
		name       string
		part, merg []byte
	}{
		{"EmptyPartition", nil, merg.Bytes()},
		{"BadDims", u64(4, 1, 1, 1, 1, 0), merg.Bytes()},
		{"ZeroSize", u64(2, 0, 2), merg.Bytes()},
		{"ShortLabels", part.Bytes()[:part.Len()-8], merg.Bytes()},
		{"LargeHeaderOneLabel", u64(2, 8192, 8192, 7), merg.Bytes()},
		{"NoCount", part.Bytes(), nil},
		{"TooManyMerges", part.Bytes(), u64(4)},
		{"ShortRecord", part.Bytes(), u64(1, 0, 1)},
		{"UnknownChild", part.Bytes(), u64(1, 0, 9, 4)},
		{"ReusedParent", part.Bytes(), u64(1, 0, 1, 2)},
		{"DoubleMerge", part.Bytes(), u64(2, 0, 1, 4, 0, 2, 5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := bpt.New().ReadRaw(bytes.NewReader(tc.part), bytes.NewReader(tc.merg))
			require.ErrorIs(t, err, bpt.ErrCorruptPartitionFile)
		})
	}
}

// TestRaw_LargeHeaderBoundedAlloc: a 24-byte partition stream announcing an
// 8192×8192 raster fails having allocated only what the stream carried.
func TestRaw_LargeHeaderBoundedAlloc(t *testing.T) {
	var stream []byte
	for _, v := range []uint64{2, 8192, 8192} {
		stream = binary.LittleEndian.AppendUint64(stream, v)
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	err := bpt.New().ReadRaw(bytes.NewReader(stream), bytes.NewReader(nil))
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, bpt.ErrCorruptPartitionFile)
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20))
}

func TestLoadFromFiles_Missing(t *testing.T) {
	dir := t.TempDir()
	err := bpt.New().LoadFromFiles(filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestPRL_RoundTrip saves through the compact codec and an index file.
func TestPRL_RoundTrip(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		src, err := bpt.NewFromRaster(noise(t, 16, 12, 4, 21))
		require.NoError(t, err)
		mergeRandomly(t, src, src.Len()-1, 22, nil)

		dir := t.TempDir()
		index := filepath.Join(dir, "tree.txt")
		part := filepath.Join(dir, "parts", "leaves.prl")
		require.NoError(t, os.Mkdir(filepath.Dir(part), 0o755))
		require.NoError(t, src.SavePRL("img/photo.png", part, index, prl.WithCompression(compressed)))

		raw, err := os.ReadFile(index)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(raw, []byte(filepath.Join("parts", "leaves.prl")+"\nimg/photo.png\n")))

		dst := bpt.New()
		img, err := dst.LoadPRL(index)
		require.NoError(t, err)
		require.Equal(t, "img/photo.png", img)
		requireSameForest(t, src, dst)
	}
}

// TestLoadPRL_OneBased reads an index whose labels start at 1.
func TestLoadPRL_OneBased(t *testing.T) {
	dir := t.TempDir()
	leaves := mustRaster(t, [][]grid.Label{{1, 2, 3}})
	require.NoError(t, prl.WriteFile(filepath.Join(dir, "p.prl"), leaves))
	index := filepath.Join(dir, "idx")
	require.NoError(t, os.WriteFile(index, []byte("p.prl\nimage.ppm\n1\t2\t4\n4 3 5\n\n"), 0o644))

	f := bpt.New()
	img, err := f.LoadPRL(index)
	require.NoError(t, err)
	require.Equal(t, "image.ppm", img)
	require.Equal(t, [][3]bpt.Label{{0, 1, 3}, {3, 2, 4}}, structure(f))
	require.Equal(t, []grid.Label{4, 4, 4}, f.RootsPartition().Data())
}

func TestLoadPRL_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, prl.WriteFile(filepath.Join(dir, "p.prl"), mustRaster(t, [][]grid.Label{{1, 2}})))

	cases := map[string]string{
		"NoHeader":    "",
		"BadFields":   "p.prl\nimg\n1 2\n",
		"BadNumber":   "p.prl\nimg\n1 x 3\n",
		"UnknownLeaf": "p.prl\nimg\n1 7 3\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			index := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(index, []byte(body), 0o644))
			_, err := bpt.New().LoadPRL(index)
			require.ErrorIs(t, err, bpt.ErrCorruptPartitionFile)
		})
	}

	_, err := bpt.New().LoadPRL(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
