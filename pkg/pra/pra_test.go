package pra

import (
	"testing"

	"prastar/pkg/graph"
	"prastar/pkg/octile"
	"prastar/pkg/search"
)

func buildOpenGrid(width, height uint64) *graph.FlatGraph {
	g := graph.NewFlatGraph()
	idAt := func(x, y uint64) uint64 { return y*width + x }
	for y := uint64(0); y < height; y++ {
		for x := uint64(0); x < width; x++ {
			g.AddNode(graph.NewLeafNode(idAt(x, y), octile.Grid{X: x, Y: y}))
		}
	}
	for y := uint64(0); y < height; y++ {
		for x := uint64(0); x < width; x++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dx := int64(-1); dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := int64(x)+dx, int64(y)+dy
					if nx < 0 || ny < 0 || nx >= int64(width) || ny >= int64(height) {
						continue
					}
					g.AddEdge(idAt(x, y), idAt(uint64(nx), uint64(ny)))
				}
			}
		}
	}
	return g
}

// Property: reachability. On a fully open grid with no obstacles, PRA*
// must find a path from one corner to the opposite corner for each of
// the truncation windows tried.
func TestPRAStarFindsPathOnOpenGrid(t *testing.T) {
	for _, k := range []int{Unbounded, 1, 2, 4} {
		base := buildOpenGrid(12, 12)
		h := graph.BuildHierarchicalGraph(base)

		start := octile.Grid{X: 0, Y: 0}
		goal := octile.Grid{X: 11, Y: 11}

		out, err := Run(h, start, goal, k)
		if err != nil {
			t.Fatalf("k=%d: Run: %v", k, err)
		}
		if len(out.PathNodeIDs) == 0 {
			t.Fatalf("k=%d: expected a non-empty path", k)
		}
		firstID := out.PathNodeIDs[0]
		lastID := out.PathNodeIDs[len(out.PathNodeIDs)-1]
		if h.Layer(0).Node(firstID).RepresentativePosition() != start {
			t.Fatalf("k=%d: path does not start at start position", k)
		}
		if h.Layer(0).Node(lastID).RepresentativePosition() != goal {
			t.Fatalf("k=%d: path does not end at goal position", k)
		}
	}
}

func TestPRAStarSameStartGoal(t *testing.T) {
	base := buildOpenGrid(5, 5)
	h := graph.BuildHierarchicalGraph(base)
	pos := octile.Grid{X: 2, Y: 2}

	out, err := Run(h, pos, pos, Unbounded)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// solution_path always seeds with start_pos (pra_star.cpp), so an
	// identical start/goal still yields a single-node path, not an empty one.
	if len(out.PathNodeIDs) != 1 {
		t.Fatalf("expected a single-node path for identical start/goal, got %v", out.PathNodeIDs)
	}
	if out.PathCost != 0 {
		t.Fatalf("expected zero cost for identical start/goal, got %v", out.PathCost)
	}
}

// Property: an unreachable goal is reported as a sentinel Output, not a
// Go error, matching search.AStar's convention.
func TestPRAStarNoPathBetweenDisconnectedComponents(t *testing.T) {
	base := graph.NewFlatGraph()
	base.AddNode(graph.NewLeafNode(0, octile.Grid{X: 0, Y: 0}))
	base.AddNode(graph.NewLeafNode(1, octile.Grid{X: 100, Y: 100}))
	h := graph.BuildHierarchicalGraph(base)

	out, err := Run(h, octile.Grid{X: 0, Y: 0}, octile.Grid{X: 100, Y: 100}, Unbounded)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !search.IsNoPath(out) {
		t.Fatalf("expected IsNoPath, got %+v", out)
	}
}

func TestPRAStarUnknownPosition(t *testing.T) {
	base := buildOpenGrid(4, 4)
	h := graph.BuildHierarchicalGraph(base)

	_, err := Run(h, octile.Grid{X: 99, Y: 99}, octile.Grid{X: 0, Y: 0}, Unbounded)
	if err == nil {
		t.Fatalf("expected an error for a start position with no node")
	}
}
