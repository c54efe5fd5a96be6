package bpt

import (
	"fmt"

	"github.com/katalvlaran/partree/grid"
)

// Prune removes every descendant of reg, turning it back into a leaf.
//
// If reg carries no pixels yet, they are first gathered from its leaf
// descendants and written into the leaves partition under reg's label; reg
// becomes the authoritative label of those pixels. Descendants are then
// dropped from the arena, and their labels report ErrRegionNotFound from
// then on. reg keeps its label, parent and neighbors.
//
// Pruning a leaf is a no-op.
// Complexity: O(n + p) for n pruned regions and p pixels.
func (f *Forest) Prune(reg *Region) error {
	if !f.owns(reg) {
		return fmt.Errorf("prune: %w", ErrRegionNotFound)
	}
	if !reg.hasChildren {
		return nil
	}

	if len(reg.coords) == 0 {
		var coords []grid.Coord
		f.eachCoordinate(reg, func(c grid.Coord) {
			coords = append(coords, c)
			f.leaves.Set(c, reg.label)
		})
		reg.coords = coords
	}

	// Breadth-first collection of every descendant.
	queue := []Label{reg.children[0], reg.children[1]}
	for head := 0; head < len(queue); head++ {
		r := f.regions[queue[head]]
		if r.hasChildren {
			queue = append(queue, r.children[0], r.children[1])
		}
	}
	for _, l := range queue {
		f.regions[l] = nil
	}
	reg.children = [2]Label{}
	reg.hasChildren = false

	f.opts.Logger.Debug("region pruned", "label", reg.label, "removed", len(queue), "pixels", len(reg.coords))
	return nil
}

// PruneLabel is Prune addressed by label.
func (f *Forest) PruneLabel(label Label) error {
	reg, err := f.Region(label)
	if err != nil {
		return err
	}
	return f.Prune(reg)
}
