package mapio

import (
	"prastar/pkg/graph"
	"prastar/pkg/octile"
)

// BuildFlatGraph turns a parsed Map into a base-layer graph.FlatGraph:
// one node per pathable cell, joined to its pathable cardinal and
// diagonal neighbours. A diagonal move is only added when both adjacent
// cardinal cells are themselves pathable, so a path can never clip
// through the corner of two touching walls.
func BuildFlatGraph(m *Map) *graph.FlatGraph {
	g := graph.NewFlatGraph()

	idAt := func(x, y uint64) uint64 { return y*m.Width + x }

	for y := uint64(0); y < m.Height; y++ {
		for x := uint64(0); x < m.Width; x++ {
			if m.IsPathable(x, y) {
				g.AddNode(graph.NewLeafNode(idAt(x, y), octile.Grid{X: x, Y: y}))
			}
		}
	}

	for y := uint64(0); y < m.Height; y++ {
		for x := uint64(0); x < m.Width; x++ {
			if !m.IsPathable(x, y) {
				continue
			}
			// Cardinal neighbours first.
			for _, d := range [4][2]int64{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := int64(x)+d[0], int64(y)+d[1]
				if !inBounds(m, nx, ny) || !m.IsPathable(uint64(nx), uint64(ny)) {
					continue
				}
				g.AddEdge(idAt(x, y), idAt(uint64(nx), uint64(ny)))
			}
			// Diagonal neighbours, gated on both adjacent cardinals.
			for _, d := range [4][2]int64{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
				nx, ny := int64(x)+d[0], int64(y)+d[1]
				if !inBounds(m, nx, ny) || !m.IsPathable(uint64(nx), uint64(ny)) {
					continue
				}
				if !m.IsPathable(x, uint64(int64(y)+d[1])) || !m.IsPathable(uint64(int64(x)+d[0]), y) {
					continue
				}
				g.AddEdge(idAt(x, y), idAt(uint64(nx), uint64(ny)))
			}
		}
	}

	return g
}

func inBounds(m *Map, x, y int64) bool {
	return x >= 0 && y >= 0 && x < int64(m.Width) && y < int64(m.Height)
}
