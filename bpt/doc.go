// Package bpt builds and maintains Binary Partition Trees (BPTs) over a
// labeled raster.
//
// What:
//
//   - Forest is an arena of Regions indexed by label. Init extracts one leaf
//     Region per distinct raster label (relabeled densely to 0..L-1) and
//     builds the region adjacency graph.
//   - Merge joins two root regions into a new parent whose label must be the
//     next arena slot; Prune removes a whole subtree below a region.
//   - Every Region keeps an ordered NeighborSet, so adjacency iteration is
//     reproducible regardless of insertion order.
//   - WriteRaw/ReadRaw (and the file helpers) persist the leaves raster plus
//     the merge sequence; SavePRL/LoadPRL use the compact prl codec.
//
// Invariants:
//
//   - A region's label never changes and labels are never reused.
//   - A region has zero or two children.
//   - Among root regions adjacency is symmetric and loop-free; a region with
//     a parent has an empty neighbor set.
//   - The leaf coordinates below the roots partition the raster.
//
// Complexity:
//
//   - Init:  O(P·d·log k), P pixels, d neighborhood size, k region degree.
//   - Merge: O(k·log k), plus O(pixels below the parent) when roots are tracked.
//   - Prune: O(size of the pruned subtree + its pixels).
//
// Errors:
//
//   - ErrEmptyRaster, ErrInvalidLabel: Init input problems.
//   - ErrRegionNotFound: label lookup miss, including labels pruned away.
//   - ErrLabelOutOfSequence, ErrAlreadyMerged, ErrSelfMerge: Merge preconditions.
//   - ErrCorruptPartitionFile: malformed raw or PRL input.
//
// A Forest is not safe for concurrent use.
package bpt
