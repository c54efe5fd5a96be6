package bpt

import (
	"fmt"

	"github.com/katalvlaran/partree/grid"
)

// Forest owns the Region arena of one Binary Partition Tree.
//
// regions[label] holds the region with that label, or nil once it has been
// pruned. len(regions) is always the label the next merge must use.
type Forest struct {
	opts       Options
	nh         grid.Neighborhood
	regions    []*Region
	maxLabel   Label
	mergeCount int
	leaves     *grid.Raster
	roots      *grid.Raster

	// correspondence maps input raster labels to dense leaf labels for the
	// lifetime of one Init.
	correspondence map[Label]Label
}

// New creates an empty forest. Call Init before anything else.
func New(opts ...Option) *Forest {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Forest{opts: o}
}

// NewFromRaster is New followed by Init.
func NewFromRaster(r *grid.Raster, opts ...Option) (*Forest, error) {
	f := New(opts...)
	if err := f.Init(r); err != nil {
		return nil, err
	}
	return f, nil
}

// Init discards any previous state and extracts the leaves of r:
//
//  1. relabel r's values densely to 0..L-1 in first-seen raster order;
//  2. create one Region per label, with room for 2L-1 regions in total;
//  3. assign every pixel to its Region;
//  4. link every pair of touching regions, and every region touching the
//     image edge to Border.
//
// r itself is not modified. On error the forest must not be used.
// Complexity: O(P·d·log k).
func (f *Forest) Init(r *grid.Raster) error {
	if r == nil || r.Len() == 0 {
		return ErrEmptyRaster
	}
	f.regions = nil
	f.mergeCount = 0
	f.maxLabel = 0
	f.correspondence = make(map[Label]Label)
	f.nh = r.Neighborhood(f.opts.Conn)

	// Stage 1: dense relabel
	leaves := r.Clone()
	data := leaves.Data()
	next := Label(0)
	for i, old := range data {
		if old == Border {
			return fmt.Errorf("%w at %v", ErrInvalidLabel, leaves.Coordinate(i))
		}
		l, ok := f.correspondence[old]
		if !ok {
			l = next
			f.correspondence[old] = l
			next++
		}
		data[i] = l
	}
	numLeaves := int(next)

	// Stage 2: allocate leaves
	f.regions = make([]*Region, numLeaves, 2*numLeaves-1)
	for i := range f.regions {
		f.regions[i] = newRegion(Label(i))
	}
	f.maxLabel = next - 1

	// Stage 3: pixels
	leaves.Each(func(c grid.Coord, l Label) {
		f.regions[l].addCoordinate(c)
	})

	// Stage 4: adjacency. Border links are recorded for every direction;
	// region pairs only through forward offsets so each edge is seen once.
	leaves.Each(func(c grid.Coord, l Label) {
		reg := f.regions[l]
		for _, d := range f.nh.All {
			if !leaves.InBounds(c.Add(d)) {
				reg.neighbors.Insert(Border, c.Scale(2).Add(d))
			}
		}
		for _, d := range f.nh.Forward {
			n := c.Add(d)
			if !leaves.InBounds(n) {
				continue
			}
			ln := leaves.At(n)
			if ln == l {
				continue
			}
			contour := c.Scale(2).Add(d)
			reg.neighbors.Insert(ln, contour)
			f.regions[ln].neighbors.Insert(l, contour)
		}
	})

	f.leaves = leaves
	f.roots = leaves.Clone()
	f.opts.Logger.Debug("forest initialised",
		"leaves", numLeaves, "pixels", leaves.Len(), "conn", f.opts.Conn.String())
	return nil
}

// Region returns the region labeled label.
// Returns ErrRegionNotFound for labels never created or already pruned.
// Complexity: O(1).
func (f *Forest) Region(label Label) (*Region, error) {
	if label >= Label(len(f.regions)) || f.regions[label] == nil {
		return nil, fmt.Errorf("%w: %d", ErrRegionNotFound, label)
	}
	return f.regions[label], nil
}

// owns reports whether reg is the live occupant of its arena slot.
func (f *Forest) owns(reg *Region) bool {
	return reg != nil && reg.label < Label(len(f.regions)) && f.regions[reg.label] == reg
}

// Len returns the arena size, which is also the next merge label.
func (f *Forest) Len() int { return len(f.regions) }

// NextLabel returns the label the next Merge must use.
func (f *Forest) NextLabel() Label { return Label(len(f.regions)) }

// MaxLabel returns the largest label created so far.
func (f *Forest) MaxLabel() Label { return f.maxLabel }

// MergeCount returns the number of successful merges since Init.
func (f *Forest) MergeCount() int { return f.mergeCount }

// Connectivity returns the connectivity the adjacency graph was built with.
func (f *Forest) Connectivity() grid.Connectivity { return f.opts.Conn }

// LeavesPartition returns the leaves raster. It changes only when Prune
// makes an internal node the label of its former leaves.
func (f *Forest) LeavesPartition() *grid.Raster { return f.leaves }

// RootsPartition returns the raster labeled by current roots. It is kept in
// sync on merge only when UpdateRoots is enabled; see RefreshRoots.
func (f *Forest) RootsPartition() *grid.Raster { return f.roots }

// Correspondence maps a label of the raster given to Init to its leaf label.
func (f *Forest) Correspondence(old Label) (Label, bool) {
	l, ok := f.correspondence[old]
	return l, ok
}

// SetUpdateRoots toggles roots-partition tracking for subsequent merges.
func (f *Forest) SetUpdateRoots(on bool) { f.opts.UpdateRoots = on }

// RefreshRoots rewrites the whole roots partition from the current roots.
// Complexity: O(P + n).
func (f *Forest) RefreshRoots() {
	for reg := range f.Regions(Roots) {
		f.eachCoordinate(reg, func(c grid.Coord) { f.roots.Set(c, reg.label) })
	}
}

// Coordinates returns every pixel below the region labeled label, in
// left-to-right leaf order. Nothing is cached on internal nodes.
func (f *Forest) Coordinates(label Label) ([]grid.Coord, error) {
	reg, err := f.Region(label)
	if err != nil {
		return nil, err
	}
	if len(reg.coords) > 0 {
		return reg.coords, nil
	}
	var out []grid.Coord
	f.eachCoordinate(reg, func(c grid.Coord) { out = append(out, c) })
	return out, nil
}

// eachCoordinate visits every pixel below reg. A node carrying coordinates
// (a leaf, or a pruned former internal node) is not descended into.
// The walk uses an explicit stack.
func (f *Forest) eachCoordinate(reg *Region, fn func(grid.Coord)) {
	stack := []*Region{reg}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(r.coords) > 0 || !r.hasChildren {
			for _, c := range r.coords {
				fn(c)
			}
			continue
		}
		// right first so the left subtree is visited first
		stack = append(stack, f.regions[r.children[1]], f.regions[r.children[0]])
	}
}
