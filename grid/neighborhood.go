package grid

// Neighborhood holds the precomputed neighbor offsets of one connectivity.
// Forward is the subset of All whose row-major displacement is positive.
type Neighborhood struct {
	Conn    Connectivity
	All     []Coord
	Forward []Coord
}

// NewNeighborhood builds the offset tables for a dims-dimensional grid.
// Offsets are enumerated axis by axis in {-1,0,+1}, highest axis outermost,
// which makes the order deterministic.
// Complexity: O(3^dims).
func NewNeighborhood(dims int, conn Connectivity) Neighborhood {
	nh := Neighborhood{Conn: conn}
	total := 1
	for i := 0; i < dims; i++ {
		total *= 3
	}
	for k := 0; k < total; k++ {
		var d Coord
		nonzero := 0
		rest := k
		for i := 0; i < dims; i++ {
			d[i] = rest%3 - 1
			rest /= 3
			if d[i] != 0 {
				nonzero++
			}
		}
		if nonzero == 0 || (conn == Conn4 && nonzero > 1) {
			continue
		}
		nh.All = append(nh.All, d)
		if isForward(d) {
			nh.Forward = append(nh.Forward, d)
		}
	}
	return nh
}

// isForward reports whether d points to a cell visited later in raster order:
// the highest non-zero axis decides.
func isForward(d Coord) bool {
	for i := MaxDims - 1; i >= 0; i-- {
		if d[i] != 0 {
			return d[i] > 0
		}
	}
	return false
}

// Neighborhood returns the offset tables matching r's dimensionality.
func (r *Raster) Neighborhood(conn Connectivity) Neighborhood {
	return NewNeighborhood(r.dims, conn)
}

// EachAdjacent calls fn for every in-bounds neighbor of c under offsets.
// Complexity: O(len(offsets)).
func (r *Raster) EachAdjacent(c Coord, offsets []Coord, fn func(n Coord, l Label)) {
	for _, d := range offsets {
		n := c.Add(d)
		if !r.InBounds(n) {
			continue
		}
		fn(n, r.At(n))
	}
}

// ConnectedComponents splits every label into its connected pieces under conn,
// returning a new raster whose labels are dense 0..n-1 in raster order of first
// appearance, and n.
//
// Time:   O(P·d), where d = len(offsets).
// Memory: O(P) for visited flags and the BFS queue.
func (r *Raster) ConnectedComponents(conn Connectivity) (*Raster, int) {
	offsets := r.Neighborhood(conn).All
	out := r.Clone()
	seen := make([]bool, len(r.labels))
	next := Label(0)

	for i0, l0 := range r.labels {
		if seen[i0] {
			continue
		}
		// BFS to collect component
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			out.labels[u] = next
			r.EachAdjacent(r.Coordinate(u), offsets, func(n Coord, l Label) {
				vi := r.Index(n)
				if l == l0 && !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			})
		}
		next++
	}
	return out, int(next)
}
