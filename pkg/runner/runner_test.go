package runner

import (
	"os"
	"path/filepath"
	"testing"

	"prastar/pkg/mapio"
	"prastar/pkg/octile"
	"prastar/pkg/pra"
	"prastar/pkg/search"
)

func writeTestMap(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.map")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const openMap = "type octile\nheight 4\nwidth 4\nmap\n....\n....\n....\n....\n"

func TestParseAlgorithmRejectsUnknown(t *testing.T) {
	if _, err := ParseAlgorithm("dijkstra"); err != ErrUnknownAlgorithm {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if a, err := ParseAlgorithm("astar"); err != nil || a != AlgorithmAStar {
		t.Fatalf("expected AlgorithmAStar, got %v, %v", a, err)
	}
}

func TestRunQueryDispatchesAStar(t *testing.T) {
	mapPath := writeTestMap(t, openMap)
	g, err := BuildGraphs(mapPath)
	if err != nil {
		t.Fatalf("BuildGraphs: %v", err)
	}
	out, err := RunQuery(g, AlgorithmAStar, 0, octile.Grid{X: 0, Y: 0}, octile.Grid{X: 3, Y: 3})
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if search.IsNoPath(out) {
		t.Fatalf("expected a path on an open grid, got %+v", out)
	}
}

func TestRunQueryDispatchesPRA(t *testing.T) {
	mapPath := writeTestMap(t, openMap)
	g, err := BuildGraphs(mapPath)
	if err != nil {
		t.Fatalf("BuildGraphs: %v", err)
	}
	out, err := RunQuery(g, AlgorithmPRA, pra.Unbounded, octile.Grid{X: 0, Y: 0}, octile.Grid{X: 3, Y: 3})
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if search.IsNoPath(out) {
		t.Fatalf("expected a path on an open grid, got %+v", out)
	}
}

func TestRunQueryUnknownAlgorithm(t *testing.T) {
	mapPath := writeTestMap(t, openMap)
	g, err := BuildGraphs(mapPath)
	if err != nil {
		t.Fatalf("BuildGraphs: %v", err)
	}
	if _, err := RunQuery(g, Algorithm("bogus"), 0, octile.Grid{X: 0, Y: 0}, octile.Grid{X: 1, Y: 1}); err != ErrUnknownAlgorithm {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestCreateAndSaveGraphsThenLoadOrBuildLoadsCache(t *testing.T) {
	mapPath := writeTestMap(t, openMap)
	if _, err := CreateAndSaveGraphs(mapPath); err != nil {
		t.Fatalf("CreateAndSaveGraphs: %v", err)
	}
	if _, err := os.Stat(mapio.MapToFlatGraphPath(mapPath)); err != nil {
		t.Fatalf("expected flat graph cache file: %v", err)
	}
	if _, err := os.Stat(mapio.MapToHierarchicalGraphPath(mapPath)); err != nil {
		t.Fatalf("expected hierarchical graph cache file: %v", err)
	}

	g, err := LoadOrBuildGraphs(mapPath)
	if err != nil {
		t.Fatalf("LoadOrBuildGraphs: %v", err)
	}
	if g.Flat.NodeCount() != 16 {
		t.Fatalf("expected 16 nodes loaded from cache, got %d", g.Flat.NodeCount())
	}
}

func TestLoadOrBuildGraphsBuildsWithoutCache(t *testing.T) {
	mapPath := writeTestMap(t, openMap)
	g, err := LoadOrBuildGraphs(mapPath)
	if err != nil {
		t.Fatalf("LoadOrBuildGraphs: %v", err)
	}
	if g.Flat.NodeCount() != 16 {
		t.Fatalf("expected 16 nodes, got %d", g.Flat.NodeCount())
	}
	if _, err := os.Stat(mapio.MapToFlatGraphPath(mapPath)); err == nil {
		t.Fatalf("expected no cache file to be written without create-graphs")
	}
}
