// Package partree maintains Binary Partition Trees over labeled rasters and
// stores them compactly.
//
// What is a partition tree?
//
//	Start from a raster whose cells carry region labels. Every label is a
//	leaf. Merging two regions creates their parent, and repeated merging
//	builds a binary hierarchy whose roots are the current segmentation.
//
// Subpackages:
//
//	grid/    N-dimensional label rasters, coordinates, 4/8 neighborhoods
//	avl/     generic AVL tree behind every region's ordered neighbor set
//	bpt/     Forest, Region, merge/prune/traversal, raw and PRL persistence
//	prl/     compact predictive run-length partition codec, optional zstd body
//	rag/     region adjacency graphs as gonum graphs
//	cmd/bpt/ command-line conversion and inspection
//
// Quick ASCII example:
//
//	    1 1 2 2         leaves 0,1        root 2
//	    1 1 2 2   ──►   0 ── 1     ──►    ┌─┴─┐
//	    1 1 2 2                           0   1
//
// Merge the two leaves into label 2 and the roots partition becomes a
// single region.
//
//	go get github.com/katalvlaran/partree
package partree
