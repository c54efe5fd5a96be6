package bpt

import "github.com/katalvlaran/partree/grid"

// Region is one node of a Binary Partition Tree. Parent and children are
// arena labels, never pointers, so a pruned node simply disappears from the
// forest.
type Region struct {
	label       Label
	coords      []grid.Coord
	parent      Label
	hasParent   bool
	children    [2]Label
	hasChildren bool
	neighbors   NeighborSet
}

func newRegion(label Label) *Region {
	return &Region{label: label}
}

// Label returns the region identifier.
func (r *Region) Label() Label { return r.label }

// Parent returns the parent label, if the region has been merged.
func (r *Region) Parent() (Label, bool) { return r.parent, r.hasParent }

// Children returns the two child labels, or nil for a leaf.
func (r *Region) Children() []Label {
	if !r.hasChildren {
		return nil
	}
	return []Label{r.children[0], r.children[1]}
}

// IsLeaf reports whether r has no children.
func (r *Region) IsLeaf() bool { return !r.hasChildren }

// IsRoot reports whether r has no parent.
func (r *Region) IsRoot() bool { return !r.hasParent }

// Coordinates returns the pixels stored on the region. Leaves always carry
// their pixels; internal nodes carry none until they are pruned. Use
// Forest.Coordinates for the pixels of any node.
func (r *Region) Coordinates() []grid.Coord { return r.coords }

// Neighbors returns the region's neighbor set. It is empty once the region
// has a parent.
func (r *Region) Neighbors() *NeighborSet { return &r.neighbors }

// NumNeighbors counts neighboring regions, not the image border.
func (r *Region) NumNeighbors() int {
	n := r.neighbors.Len()
	if r.neighbors.Contains(Border) {
		n--
	}
	return n
}

// IsNeighbor reports whether the region labeled other is adjacent to r.
func (r *Region) IsNeighbor(other Label) bool {
	return other != Border && r.neighbors.Contains(other)
}

// OnBorder reports whether r touches the image border.
func (r *Region) OnBorder() bool { return r.neighbors.Contains(Border) }

func (r *Region) addCoordinate(c grid.Coord) { r.coords = append(r.coords, c) }
