// Package rag exports region adjacency graphs as gonum graphs.
//
// FromRaster scans a label raster directly: one node per distinct label and
// one edge per touching pair, weighted by the number of touching pixel pairs
// (the contact length). FromForest reads the current segmentation of a
// bpt.Forest: one node per root region and one unweighted edge per neighbor
// link.
//
// Node IDs are the labels themselves, so labels above math.MaxInt64 are
// rejected with ErrLabelRange.
package rag
