// Package grid treats an N-dimensional (1D, 2D or 3D) raster of labels as the
// pixel grid a partition is built on.
//
// What:
//
//   - Raster stores one Label per cell in row-major order (axis 0 fastest).
//   - Coord addresses a cell; unused trailing axes are zero.
//   - Connectivity selects the neighborhood: Conn4 (orthogonal neighbors only,
//     6 in 3D) or Conn8 (all cells touching, 26 in 3D).
//   - Forward offsets are the half of a neighborhood that points "ahead" in scan
//     order, so every undirected adjacency is visited exactly once.
//
// Why:
//
//   - Partition trees need raster-order iteration of (Coord, Label) pairs,
//     adjacency iteration under a configurable connectivity, and direct label
//     read/write by coordinate. Nothing else.
//
// Complexity:
//
//   - Each, EachAdjacent: O(P) and O(d) respectively (P = cell count, d = 2·dims or 3^dims−1).
//   - ConnectedComponents: O(P·d), Memory: O(P).
//
// Errors:
//
//   - ErrEmptyRaster: a raster with no cells, or zero dimensions.
//   - ErrTooManyDims: more than MaxDims axes requested.
//   - ErrNonRectangular: rows of differing lengths in FromRows.
//   - ErrSizeMismatch: a data slice whose length does not match the raster size.
package grid
