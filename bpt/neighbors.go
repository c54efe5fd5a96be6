package bpt

import (
	"cmp"
	"iter"

	"github.com/katalvlaran/partree/avl"
	"github.com/katalvlaran/partree/grid"
)

// Link is one entry of a NeighborSet: the neighboring region (or Border) and
// the representative contour coordinate where the two meet. Contour
// coordinates live on the doubled grid: the midpoint between pixel p and its
// neighbor p+d is 2p+d.
type Link struct {
	Label Label
	Coord grid.Coord
}

// IsBorder reports whether l points outside the image.
func (l Link) IsBorder() bool { return l.Label == Border }

// compareLinks orders links by neighbor label. A set holds at most one link
// per label, so label order is also (label, coordinate) order and membership
// is decided by the label alone.
func compareLinks(a, b Link) int {
	return cmp.Compare(a.Label, b.Label)
}

// NeighborSet is an ordered, duplicate-free set of Links. The zero value is
// an empty set ready to use.
type NeighborSet struct {
	tree *avl.Tree[Link]
}

func (s *NeighborSet) lazy() *avl.Tree[Link] {
	if s.tree == nil {
		s.tree = avl.New(compareLinks)
	}
	return s.tree
}

// Insert adds a link to label with contour coordinate c. Inserting a label
// already present is a no-op and keeps the original coordinate.
// Complexity: O(log n).
func (s *NeighborSet) Insert(label Label, c grid.Coord) bool {
	return s.lazy().Insert(Link{Label: label, Coord: c})
}

// Contains reports whether label is a member.
func (s *NeighborSet) Contains(label Label) bool {
	_, ok := s.Find(label)
	return ok
}

// Find returns the link to label, if present.
func (s *NeighborSet) Find(label Label) (Link, bool) {
	if s.tree == nil {
		return Link{}, false
	}
	return s.tree.Get(Link{Label: label})
}

// Erase removes the link to label and reports whether it was present.
func (s *NeighborSet) Erase(label Label) bool {
	if s.tree == nil {
		return false
	}
	return s.tree.Delete(Link{Label: label})
}

// Len returns the number of links, the Border link included.
func (s *NeighborSet) Len() int {
	if s.tree == nil {
		return 0
	}
	return s.tree.Len()
}

// Clear drops every link and releases the tree.
func (s *NeighborSet) Clear() { s.tree = nil }

// All iterates the links in ascending label order; a Border link comes last.
func (s *NeighborSet) All() iter.Seq[Link] {
	return func(yield func(Link) bool) {
		if s.tree == nil {
			return
		}
		s.tree.Ascend(func(l Link) bool { return yield(l) })
	}
}

// Links returns the links in ascending order.
func (s *NeighborSet) Links() []Link {
	if s.tree == nil {
		return nil
	}
	return s.tree.Items()
}

// Labels returns the neighboring region labels in ascending order, without Border.
func (s *NeighborSet) Labels() []Label {
	var out []Label
	for l := range s.All() {
		if !l.IsBorder() {
			out = append(out, l.Label)
		}
	}
	return out
}
