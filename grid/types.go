package grid

import "errors"

// Sentinel errors for grid operations.
var (
	// ErrEmptyRaster indicates a raster with no dimensions or no cells.
	ErrEmptyRaster = errors.New("grid: raster must have at least one cell")
	// ErrTooManyDims indicates more axes than MaxDims.
	ErrTooManyDims = errors.New("grid: too many dimensions")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("grid: all rows must have the same length")
	// ErrSizeMismatch indicates a data slice that does not fit the raster sizes.
	ErrSizeMismatch = errors.New("grid: data length does not match raster size")
)

// MaxDims is the largest dimensionality a Raster supports.
const MaxDims = 3

// Label identifies a region. Labels are dense, non-negative integers.
type Label = uint64

// Coord addresses a raster cell. Axis 0 is x (columns), axis 1 is y (rows),
// axis 2 is z (slices). Axes beyond the raster's dimensionality are zero.
// Coord is comparable, so it can key maps.
type Coord [MaxDims]int

// XY builds a 2D coordinate.
func XY(x, y int) Coord { return Coord{x, y, 0} }

// Add returns c+d component-wise.
func (c Coord) Add(d Coord) Coord {
	return Coord{c[0] + d[0], c[1] + d[1], c[2] + d[2]}
}

// Scale returns k·c component-wise.
func (c Coord) Scale(k int) Coord {
	return Coord{k * c[0], k * c[1], k * c[2]}
}

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
// In 1D both reduce to the two collinear neighbors; in 3D Conn4 is the 6-neighborhood
// and Conn8 the 26-neighborhood.
type Connectivity int

const (
	// Conn4 uses orthogonal neighbors only: N, E, S, W (plus up/down in 3D).
	Conn4 Connectivity = iota
	// Conn8 uses every touching cell, diagonals included.
	Conn8
)

// String implements fmt.Stringer.
func (c Connectivity) String() string {
	switch c {
	case Conn4:
		return "conn4"
	case Conn8:
		return "conn8"
	default:
		return "conn?"
	}
}
