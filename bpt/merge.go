package bpt

import (
	"fmt"

	"github.com/katalvlaran/partree/grid"
)

// Merge creates the region labeled label as the parent of a and b.
//
// Preconditions:
//   - label == NextLabel(), otherwise ErrLabelOutOfSequence;
//   - neither a nor b has a parent, otherwise ErrAlreadyMerged;
//   - a and b are distinct live regions of f (ErrSelfMerge, ErrRegionNotFound).
//
// The parent's neighbors are (a.neighbors ∪ b.neighbors) − {a, b}. Every
// third region that pointed at a or b now points at the parent instead, and
// the neighbor sets of a and b are cleared. When UpdateRoots is on, the
// parent's pixels are relabeled in the roots partition.
//
// Regions need not be adjacent to be merged.
// Complexity: O(k·log k) for k neighbors, plus O(pixels) with UpdateRoots.
func (f *Forest) Merge(a, b *Region, label Label) (*Region, error) {
	if !f.owns(a) || !f.owns(b) {
		return nil, fmt.Errorf("merge into %d: %w", label, ErrRegionNotFound)
	}
	if a == b {
		return nil, fmt.Errorf("merge %d into %d: %w", a.label, label, ErrSelfMerge)
	}
	if label != f.NextLabel() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLabelOutOfSequence, label, f.NextLabel())
	}
	if a.hasParent {
		return nil, fmt.Errorf("%w: %d has parent %d", ErrAlreadyMerged, a.label, a.parent)
	}
	if b.hasParent {
		return nil, fmt.Errorf("%w: %d has parent %d", ErrAlreadyMerged, b.label, b.parent)
	}

	parent := newRegion(label)
	parent.children = [2]Label{a.label, b.label}
	parent.hasChildren = true
	a.parent, a.hasParent = label, true
	b.parent, b.hasParent = label, true

	// Union of both neighbor sets, minus the merged pair. Insert is a no-op
	// for labels already present, which de-duplicates shared neighbors.
	for l := range a.neighbors.All() {
		if l.Label != b.label {
			parent.neighbors.Insert(l.Label, l.Coord)
		}
	}
	for l := range b.neighbors.All() {
		if l.Label != a.label {
			parent.neighbors.Insert(l.Label, l.Coord)
		}
	}

	// Redirect the back links of every neighbor to the parent.
	for l := range parent.neighbors.All() {
		if l.IsBorder() {
			continue
		}
		other := f.regions[l.Label]
		other.neighbors.Erase(a.label)
		other.neighbors.Erase(b.label)
		other.neighbors.Insert(label, l.Coord)
	}
	a.neighbors.Clear()
	b.neighbors.Clear()

	f.regions = append(f.regions, parent)
	f.maxLabel = max(f.maxLabel, label)
	f.mergeCount++

	if f.opts.UpdateRoots {
		f.eachCoordinate(parent, func(c grid.Coord) { f.roots.Set(c, label) })
	}
	f.opts.Logger.Debug("regions merged",
		"a", a.label, "b", b.label, "parent", label, "neighbors", parent.neighbors.Len())
	return parent, nil
}

// MergeLabels is Merge addressed by labels.
func (f *Forest) MergeLabels(a, b, parent Label) (*Region, error) {
	ra, err := f.Region(a)
	if err != nil {
		return nil, err
	}
	rb, err := f.Region(b)
	if err != nil {
		return nil, err
	}
	return f.Merge(ra, rb, parent)
}
