package bpt

import "iter"

// Filter selects which regions a traversal visits.
type Filter int

const (
	// Global visits every live region.
	Global Filter = iota
	// Leaves visits regions without children.
	Leaves
	// NonLeaves visits regions with children.
	NonLeaves
	// Roots visits regions without a parent.
	Roots
	// NonRoots visits regions with a parent.
	NonRoots
)

// String implements fmt.Stringer.
func (f Filter) String() string {
	switch f {
	case Global:
		return "global"
	case Leaves:
		return "leaves"
	case NonLeaves:
		return "non-leaves"
	case Roots:
		return "roots"
	case NonRoots:
		return "non-roots"
	default:
		return "unknown"
	}
}

func (f Filter) match(r *Region) bool {
	switch f {
	case Leaves:
		return !r.hasChildren
	case NonLeaves:
		return r.hasChildren
	case Roots:
		return !r.hasParent
	case NonRoots:
		return r.hasParent
	default:
		return true
	}
}

// Cursor is a position in a filtered, label-ordered walk over the arena.
// Pruned slots are skipped. Two cursors are equal when they point at the
// same slot of the same forest, whatever their filters.
type Cursor struct {
	f      *Forest
	filter Filter
	pos    int
}

// Begin returns a cursor at the first region matching filter.
func (f *Forest) Begin(filter Filter) Cursor {
	c := Cursor{f: f, filter: filter, pos: -1}
	c.Next()
	return c
}

// End returns the past-the-end cursor.
func (f *Forest) End(filter Filter) Cursor {
	return Cursor{f: f, filter: filter, pos: len(f.regions)}
}

// Valid reports whether the cursor points at a region.
func (c Cursor) Valid() bool { return c.pos >= 0 && c.pos < len(c.f.regions) }

// Next advances to the next matching region, or to End.
// Amortized O(1) over a full walk.
func (c *Cursor) Next() {
	for c.pos++; c.pos < len(c.f.regions); c.pos++ {
		if r := c.f.regions[c.pos]; r != nil && c.filter.match(r) {
			return
		}
	}
}

// Region returns the region under the cursor; nil when not Valid.
func (c Cursor) Region() *Region {
	if !c.Valid() {
		return nil
	}
	return c.f.regions[c.pos]
}

// Equal compares slot identity.
func (c Cursor) Equal(o Cursor) bool { return c.f == o.f && c.pos == o.pos }

// Regions iterates, in label order, the live regions matching filter.
func (f *Forest) Regions(filter Filter) iter.Seq[*Region] {
	return func(yield func(*Region) bool) {
		for c := f.Begin(filter); c.Valid(); c.Next() {
			if !yield(c.Region()) {
				return
			}
		}
	}
}

// Count returns the number of live regions matching filter.
// Complexity: O(n).
func (f *Forest) Count(filter Filter) int {
	n := 0
	for range f.Regions(filter) {
		n++
	}
	return n
}
