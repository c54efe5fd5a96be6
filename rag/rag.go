package rag

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/katalvlaran/partree/bpt"
	"github.com/katalvlaran/partree/grid"
)

// ErrLabelRange indicates a label that cannot be used as a gonum node ID.
var ErrLabelRange = errors.New("rag: label exceeds int64 node id range")

func nodeID(l grid.Label) (int64, error) {
	if l > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrLabelRange, l)
	}
	return int64(l), nil
}

// FromRaster builds the weighted adjacency graph of r's labels under conn.
// Complexity: O(P·d).
func FromRaster(r *grid.Raster, conn grid.Connectivity) (*simple.WeightedUndirectedGraph, error) {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	nh := r.Neighborhood(conn)
	contacts := make(map[[2]int64]float64)

	var err error
	r.Each(func(c grid.Coord, l grid.Label) {
		if err != nil {
			return
		}
		var id int64
		if id, err = nodeID(l); err != nil {
			return
		}
		if g.Node(id) == nil {
			g.AddNode(simple.Node(id))
		}
		r.EachAdjacent(c, nh.Forward, func(_ grid.Coord, ln grid.Label) {
			if ln == l || ln > math.MaxInt64 {
				return
			}
			key := [2]int64{min(id, int64(ln)), max(id, int64(ln))}
			contacts[key]++
		})
	})
	if err != nil {
		return nil, err
	}
	for k, w := range contacts {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(k[0]), simple.Node(k[1]), w))
	}
	return g, nil
}

// FromForest builds the adjacency graph of f's root regions.
// Complexity: O(n + e).
func FromForest(f *bpt.Forest) (*simple.UndirectedGraph, error) {
	g := simple.NewUndirectedGraph()
	for reg := range f.Regions(bpt.Roots) {
		id, err := nodeID(reg.Label())
		if err != nil {
			return nil, err
		}
		if g.Node(id) == nil {
			g.AddNode(simple.Node(id))
		}
		for _, l := range reg.Neighbors().Labels() {
			if l < reg.Label() {
				continue // added from the other side
			}
			nid, err := nodeID(l)
			if err != nil {
				return nil, err
			}
			g.SetEdge(g.NewEdge(simple.Node(id), simple.Node(nid)))
		}
	}
	return g, nil
}

// Components returns the connected components of g as sorted node ID lists,
// ordered by their smallest ID.
func Components(g graph.Undirected) [][]int64 {
	var out [][]int64
	for _, cc := range topo.ConnectedComponents(g) {
		ids := make([]int64, len(cc))
		for i, n := range cc {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int64) int { return cmp.Compare(a[0], b[0]) })
	return out
}

// Edges returns the sorted (low, high) node ID pairs of g.
func Edges(g interface{ Edges() graph.Edges }) [][2]int64 {
	var out [][2]int64
	for _, e := range graph.EdgesOf(g.Edges()) {
		u, v := e.From().ID(), e.To().ID()
		out = append(out, [2]int64{min(u, v), max(u, v)})
	}
	slices.SortFunc(out, func(a, b [2]int64) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})
	return out
}
