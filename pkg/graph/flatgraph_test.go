package graph

import (
	"sort"
	"testing"

	"prastar/pkg/octile"
)

func build4x4Open() *FlatGraph {
	g := NewFlatGraph()
	width := uint64(4)
	for y := uint64(0); y < 4; y++ {
		for x := uint64(0); x < 4; x++ {
			id := y*width + x
			g.AddNode(NewLeafNode(id, octile.Grid{X: x, Y: y}))
		}
	}
	idAt := func(x, y uint64) uint64 { return y*width + x }
	for y := uint64(0); y < 4; y++ {
		for x := uint64(0); x < 4; x++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dx := int64(-1); dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := int64(x)+dx, int64(y)+dy
					if nx < 0 || ny < 0 || nx >= 4 || ny >= 4 {
						continue
					}
					g.AddEdge(idAt(x, y), idAt(uint64(nx), uint64(ny)))
				}
			}
		}
	}
	return g
}

// E1: an interior cell of a fully open 4x4 grid has all 8 neighbours.
func TestInteriorCellHasEightNeighbours(t *testing.T) {
	g := build4x4Open()
	id, err := g.NodeIDAt(octile.Grid{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("NodeIDAt: %v", err)
	}
	if g.NodeDegree(id) != 8 {
		t.Fatalf("expected degree 8, got %d", g.NodeDegree(id))
	}
	neighbours := g.GetNeighbours(id)
	if len(neighbours) != 8 {
		t.Fatalf("expected 8 neighbours, got %d", len(neighbours))
	}
}

func TestCornerCellHasThreeNeighbours(t *testing.T) {
	g := build4x4Open()
	id, _ := g.NodeIDAt(octile.Grid{X: 0, Y: 0})
	if g.NodeDegree(id) != 3 {
		t.Fatalf("expected degree 3, got %d", g.NodeDegree(id))
	}
}

func TestNodeIDAtUnknownPosition(t *testing.T) {
	g := build4x4Open()
	_, err := g.NodeIDAt(octile.Grid{X: 99, Y: 99})
	if err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestAddEdgeUnknownNode(t *testing.T) {
	g := NewFlatGraph()
	g.AddNode(NewLeafNode(0, octile.Grid{X: 0, Y: 0}))
	if err := g.AddEdge(0, 42); err != ErrNodeNotFound {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestAddEdgeIdempotent(t *testing.T) {
	g := NewFlatGraph()
	g.AddNode(NewLeafNode(0, octile.Grid{X: 0, Y: 0}))
	g.AddNode(NewLeafNode(1, octile.Grid{X: 1, Y: 0}))
	g.AddEdge(0, 1)
	g.AddEdge(0, 1)
	g.AddEdge(1, 0)
	if g.EdgeCount() != 1 {
		t.Fatalf("expected edge count 1, got %d", g.EdgeCount())
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	g := NewFlatGraph()
	g.AddNode(NewLeafNode(0, octile.Grid{X: 0, Y: 0}))
	if err := g.AddNode(NewLeafNode(0, octile.Grid{X: 1, Y: 1})); err != ErrDuplicateNode {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestAllNodeIDsAscending(t *testing.T) {
	g := build4x4Open()
	ids := g.AllNodeIDs()
	if !sort.SliceIsSorted(ids, func(i, j int) bool { return ids[i] < ids[j] }) {
		t.Fatalf("AllNodeIDs not ascending: %v", ids)
	}
	if len(ids) != 16 {
		t.Fatalf("expected 16 ids, got %d", len(ids))
	}
}

// Restriction gate tests the queried node, not its neighbours: a node
// outside the constrained set sees no neighbours even though a node
// inside the set can still see neighbours that are themselves outside it.
func TestRestrictionGateTestsQueriedNode(t *testing.T) {
	g := build4x4Open()
	center, _ := g.NodeIDAt(octile.Grid{X: 1, Y: 1})
	adjacent, _ := g.NodeIDAt(octile.Grid{X: 2, Y: 2})
	farAway, _ := g.NodeIDAt(octile.Grid{X: 3, Y: 3})

	g.SetConstrainedNodes(map[uint64]struct{}{center: {}})

	if n := g.GetNeighbours(center); len(n) != 8 {
		t.Fatalf("constrained node should still see its neighbours, got %d", len(n))
	}
	if n := g.GetNeighbours(adjacent); n != nil {
		t.Fatalf("node outside the constrained set should see no neighbours, got %v", n)
	}
	if !g.AreNeighbours(center, adjacent) {
		t.Fatalf("AreNeighbours must ignore the restriction set")
	}

	g.ClearConstrainedNodes()
	if n := g.GetNeighbours(farAway); len(n) != 3 {
		t.Fatalf("expected unrestricted neighbours after clear, got %d", len(n))
	}
}

func TestNodePanicsOnUnknownID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unknown node id")
		}
	}()
	g := NewFlatGraph()
	g.Node(999)
}
