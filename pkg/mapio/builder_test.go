package mapio

import (
	"testing"

	"prastar/pkg/octile"
)

func mustParseMap(t *testing.T, contents string) *Map {
	t.Helper()
	m, err := LoadMap(writeTestMap(t, contents))
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	return m
}

func TestBuildFlatGraphOpenGridFullyConnected(t *testing.T) {
	m := mustParseMap(t, "height 3\nwidth 3\nmap\n...\n...\n...\n")
	g := BuildFlatGraph(m)
	if g.NodeCount() != 9 {
		t.Fatalf("expected 9 nodes, got %d", g.NodeCount())
	}
	center, err := g.NodeIDAt(octile.Grid{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("NodeIDAt: %v", err)
	}
	if g.NodeDegree(center) != 8 {
		t.Fatalf("expected center degree 8, got %d", g.NodeDegree(center))
	}
}

func TestBuildFlatGraphSkipsObstacleCells(t *testing.T) {
	m := mustParseMap(t, "height 2\nwidth 2\nmap\n.@\n..\n")
	g := BuildFlatGraph(m)
	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 pathable nodes, got %d", g.NodeCount())
	}
}

// The anti-clipping rule: a diagonal move between two cells is legal only
// when both adjacent cardinal cells are also pathable, so a path can
// never clip through the shared corner of two walls.
func TestBuildFlatGraphAntiClippingDiagonal(t *testing.T) {
	m := mustParseMap(t, "height 2\nwidth 2\nmap\n.@\n@.\n")
	g := BuildFlatGraph(m)
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 pathable nodes, got %d", g.NodeCount())
	}
	topLeft := uint64(0)
	bottomRight := uint64(3)
	if g.AreNeighbours(topLeft, bottomRight) {
		t.Fatalf("diagonal move clipping through two walls should not be an edge")
	}
}

func TestBuildFlatGraphAllowsCleanDiagonal(t *testing.T) {
	m := mustParseMap(t, "height 2\nwidth 2\nmap\n..\n..\n")
	g := BuildFlatGraph(m)
	topLeft := uint64(0)
	bottomRight := uint64(3)
	if !g.AreNeighbours(topLeft, bottomRight) {
		t.Fatalf("expected a diagonal edge when both cardinal cells are open")
	}
}
