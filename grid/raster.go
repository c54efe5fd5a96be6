package grid

import (
	"fmt"
	"iter"
	"slices"
)

// Raster is a dense, row-major array of labels with 1 to MaxDims axes.
// Axis 0 varies fastest, so in 2D a row is a contiguous run of Size(0) cells.
type Raster struct {
	dims    int
	sizes   Coord // unused axes hold 1
	strides Coord
	labels  []Label
}

// New allocates a zero-filled raster with the given per-axis sizes.
// Returns ErrEmptyRaster if no sizes are given or any size is < 1,
// ErrTooManyDims if more than MaxDims sizes are given.
// Complexity: O(P) time and memory.
func New(sizes ...int) (*Raster, error) {
	if len(sizes) == 0 {
		return nil, ErrEmptyRaster
	}
	if len(sizes) > MaxDims {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyDims, len(sizes), MaxDims)
	}
	r := &Raster{dims: len(sizes), sizes: Coord{1, 1, 1}}
	total := 1
	for i, s := range sizes {
		if s < 1 {
			return nil, ErrEmptyRaster
		}
		r.strides[i] = total
		r.sizes[i] = s
		total *= s
	}
	for i := len(sizes); i < MaxDims; i++ {
		r.strides[i] = total
	}
	r.labels = make([]Label, total)
	return r, nil
}

// FromData wraps a copy of data as a raster of the given sizes.
// Returns ErrSizeMismatch if len(data) differs from the product of sizes.
func FromData(data []Label, sizes ...int) (*Raster, error) {
	r, err := New(sizes...)
	if err != nil {
		return nil, err
	}
	if len(data) != len(r.labels) {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrSizeMismatch, len(data), len(r.labels))
	}
	copy(r.labels, data)
	return r, nil
}

// FromRows builds a 2D raster from rows[y][x]. The input is deep-copied.
// Returns ErrEmptyRaster if there are no rows or no columns,
// ErrNonRectangular if any row length differs.
func FromRows(rows [][]Label) (*Raster, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyRaster
	}
	h, w := len(rows), len(rows[0])
	for _, row := range rows {
		if len(row) != w {
			return nil, ErrNonRectangular
		}
	}
	r, err := New(w, h)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		copy(r.labels[y*w:(y+1)*w], row)
	}
	return r, nil
}

// Dims returns the number of axes.
func (r *Raster) Dims() int { return r.dims }

// Size returns the extent along axis i (1 for unused axes).
func (r *Raster) Size(i int) int { return r.sizes[i] }

// Sizes returns the per-axis extents, one entry per axis.
func (r *Raster) Sizes() []int {
	out := make([]int, r.dims)
	for i := range out {
		out[i] = r.sizes[i]
	}
	return out
}

// Len returns the number of cells.
func (r *Raster) Len() int { return len(r.labels) }

// Data exposes the backing row-major slice. Writes through it are visible to the raster.
func (r *Raster) Data() []Label { return r.labels }

// InBounds reports whether c lies within the raster.
// Complexity: O(1).
func (r *Raster) InBounds(c Coord) bool {
	for i := 0; i < MaxDims; i++ {
		if c[i] < 0 || c[i] >= r.sizes[i] {
			return false
		}
	}
	return true
}

// Index maps c to its row-major offset. c must be in bounds.
func (r *Raster) Index(c Coord) int {
	return c[0]*r.strides[0] + c[1]*r.strides[1] + c[2]*r.strides[2]
}

// Coordinate converts a row-major offset back to a Coord.
func (r *Raster) Coordinate(idx int) Coord {
	var c Coord
	for i := 0; i < r.dims; i++ {
		c[i] = idx % r.sizes[i]
		idx /= r.sizes[i]
	}
	return c
}

// At reads the label at c.
func (r *Raster) At(c Coord) Label { return r.labels[r.Index(c)] }

// Set writes the label at c.
func (r *Raster) Set(c Coord, l Label) { r.labels[r.Index(c)] = l }

// Each calls fn for every cell in raster order.
// Complexity: O(P).
func (r *Raster) Each(fn func(c Coord, l Label)) {
	var c Coord
	for _, l := range r.labels {
		fn(c, l)
		// odometer increment, axis 0 fastest
		for i := 0; i < r.dims; i++ {
			c[i]++
			if c[i] < r.sizes[i] {
				break
			}
			c[i] = 0
		}
	}
}

// All returns an iterator over (Coord, Label) pairs in raster order.
func (r *Raster) All() iter.Seq2[Coord, Label] {
	return func(yield func(Coord, Label) bool) {
		for i, l := range r.labels {
			if !yield(r.Coordinate(i), l) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	cp := *r
	cp.labels = slices.Clone(r.labels)
	return &cp
}

// SameShape reports whether r and o have identical dimensionality and sizes.
func (r *Raster) SameShape(o *Raster) bool {
	return r.dims == o.dims && r.sizes == o.sizes
}

// Equal reports whether r and o have the same shape and labels.
func (r *Raster) Equal(o *Raster) bool {
	return r.SameShape(o) && slices.Equal(r.labels, o.labels)
}

// Rows returns a copy of a 1D or 2D raster as rows[y][x]. It panics for 3D rasters.
func (r *Raster) Rows() [][]Label {
	if r.dims > 2 {
		panic("grid: Rows on a 3D raster")
	}
	w, h := r.sizes[0], r.sizes[1]
	rows := make([][]Label, h)
	for y := range rows {
		rows[y] = slices.Clone(r.labels[y*w : (y+1)*w])
	}
	return rows
}

// String implements fmt.Stringer with a compact shape description.
func (r *Raster) String() string {
	return fmt.Sprintf("Raster%v", r.Sizes())
}
