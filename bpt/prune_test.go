package bpt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/partree/bpt"
	"github.com/katalvlaran/partree/grid"
)

// quad builds the forest 4=(0,1), 5=(2,3), 6=(4,5) over a 2×2 raster.
func quad(t *testing.T) *bpt.Forest {
	t.Helper()
	f, err := bpt.NewFromRaster(mustRaster(t, [][]grid.Label{{0, 1}, {2, 3}}))
	require.NoError(t, err)
	for _, m := range [][3]bpt.Label{{0, 1, 4}, {2, 3, 5}, {4, 5, 6}} {
		_, err := f.MergeLabels(m[0], m[1], m[2])
		require.NoError(t, err)
	}
	return f
}

func TestPrune_Root(t *testing.T) {
	f := quad(t)
	require.NoError(t, f.PruneLabel(6))

	for l := bpt.Label(0); l < 6; l++ {
		_, err := f.Region(l)
		require.ErrorIs(t, err, bpt.ErrRegionNotFound, "label %d", l)
	}
	root, err := f.Region(6)
	require.NoError(t, err)
	require.True(t, root.IsLeaf())
	require.Nil(t, root.Children())
	require.Len(t, root.Coordinates(), 4)
	require.Equal(t, 1, f.Count(bpt.Global))
	require.Equal(t, []grid.Label{6, 6, 6, 6}, f.LeavesPartition().Data())

	// labels keep growing from the arena end
	require.EqualValues(t, 7, f.NextLabel())
}

func TestPrune_Subtree(t *testing.T) {
	f := quad(t)
	require.NoError(t, f.PruneLabel(4))

	for _, l := range []bpt.Label{0, 1} {
		_, err := f.Region(l)
		require.ErrorIs(t, err, bpt.ErrRegionNotFound)
	}
	reg, err := f.Region(4)
	require.NoError(t, err)
	require.True(t, reg.IsLeaf())
	require.Equal(t, []grid.Coord{grid.XY(0, 0), grid.XY(1, 0)}, reg.Coordinates())
	parent, ok := reg.Parent()
	require.True(t, ok)
	require.EqualValues(t, 6, parent)

	require.Equal(t, []grid.Label{4, 4, 2, 3}, f.LeavesPartition().Data())
	require.Equal(t, 3, f.Count(bpt.Leaves))

	coords, err := f.Coordinates(6)
	require.NoError(t, err)
	require.Len(t, coords, 4)

	// pruning again, or pruning a leaf, changes nothing
	require.NoError(t, f.PruneLabel(4))
	require.NoError(t, f.PruneLabel(2))
	require.Equal(t, 5, f.Count(bpt.Global))

	require.ErrorIs(t, f.PruneLabel(0), bpt.ErrRegionNotFound)
}

// TestPrune_ThenMerge: a pruned root behaves as a leaf for further merges.
func TestPrune_ThenMerge(t *testing.T) {
	f, err := bpt.NewFromRaster(mustRaster(t, [][]grid.Label{{0, 1, 2}}))
	require.NoError(t, err)
	_, err = f.MergeLabels(0, 1, 3)
	require.NoError(t, err)
	require.NoError(t, f.PruneLabel(3))

	p3, _ := f.Region(3)
	require.Equal(t, []bpt.Label{2}, p3.Neighbors().Labels())

	p, err := f.MergeLabels(3, 2, 4)
	require.NoError(t, err)
	require.Equal(t, []bpt.Label{3, 2}, p.Children())
	require.Equal(t, []grid.Label{4, 4, 4}, f.RootsPartition().Data())

	coords, err := f.Coordinates(4)
	require.NoError(t, err)
	require.Equal(t, []grid.Coord{grid.XY(0, 0), grid.XY(1, 0), grid.XY(2, 0)}, coords)
}

// TestPrune_Deep prunes a long caterpillar tree without recursion.
func TestPrune_Deep(t *testing.T) {
	const n = 5000
	r, err := grid.New(n)
	require.NoError(t, err)
	for i := range r.Data() {
		r.Data()[i] = grid.Label(i)
	}
	f, err := bpt.NewFromRaster(r, bpt.WithUpdateRoots(false))
	require.NoError(t, err)

	top := bpt.Label(0)
	for i := 1; i < n; i++ {
		p, err := f.MergeLabels(top, bpt.Label(i), f.NextLabel())
		require.NoError(t, err)
		top = p.Label()
	}
	require.NoError(t, f.PruneLabel(top))
	reg, _ := f.Region(top)
	require.Len(t, reg.Coordinates(), n)
	require.Equal(t, 1, f.Count(bpt.Global))
}
