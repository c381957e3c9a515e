// Package runner is the I/O-glue layer the three CLI binaries share:
// algorithm dispatch (astar vs pra), graph loading with the force_create
// cache semantics, CSV export, and the per-scenario log line, none of
// which belongs in the core search packages.
package runner

import (
	"errors"
	"fmt"
	"log"
	"os"

	"prastar/pkg/graph"
	"prastar/pkg/mapio"
	"prastar/pkg/octile"
	"prastar/pkg/persist"
	"prastar/pkg/pra"
	"prastar/pkg/search"
)

// Algorithm selects which planner RunQuery dispatches to.
type Algorithm string

const (
	AlgorithmAStar Algorithm = "astar"
	AlgorithmPRA   Algorithm = "pra"
)

// ErrUnknownAlgorithm is returned when an --algorithm flag value does not
// name a recognized Algorithm.
var ErrUnknownAlgorithm = errors.New("runner: unknown algorithm type")

// ParseAlgorithm validates s against the known algorithm names.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmAStar:
		return AlgorithmAStar, nil
	case AlgorithmPRA:
		return AlgorithmPRA, nil
	default:
		return "", ErrUnknownAlgorithm
	}
}

// Graphs bundles the two representations a query might need: the flat
// base layer for astar, the full hierarchy for pra.
type Graphs struct {
	Flat         *graph.FlatGraph
	Hierarchical *graph.HierarchicalGraph
}

// BuildGraphs parses the map at mapPath and builds both representations
// from scratch, without touching any cache file.
func BuildGraphs(mapPath string) (*Graphs, error) {
	m, err := mapio.LoadMap(mapPath)
	if err != nil {
		return nil, fmt.Errorf("runner: loading map %s: %w", mapPath, err)
	}
	flat := mapio.BuildFlatGraph(m)
	hier := graph.BuildHierarchicalGraph(flat)
	return &Graphs{Flat: flat, Hierarchical: hier}, nil
}

// LoadOrBuildGraphs implements the run-single/run-multi half of
// force_create: if a cached .flat_graph.nop/.hierarchical_graph.nop pair
// sits next to mapPath, it is loaded; otherwise the graphs are built
// in-memory from the map and never persisted (only create-graphs
// persists — see CreateAndSaveGraphs).
func LoadOrBuildGraphs(mapPath string) (*Graphs, error) {
	flatPath := mapio.MapToFlatGraphPath(mapPath)
	hierPath := mapio.MapToHierarchicalGraphPath(mapPath)

	flat, flatErr := persist.LoadFlatGraph(flatPath)
	hier, hierErr := persist.LoadHierarchicalGraph(hierPath)
	if flatErr == nil && hierErr == nil {
		return &Graphs{Flat: flat, Hierarchical: hier}, nil
	}
	return BuildGraphs(mapPath)
}

// CreateAndSaveGraphs implements create-graphs' half of force_create: it
// always rebuilds from the map file and unconditionally overwrites the
// cache files, regardless of what (if anything) was cached before.
func CreateAndSaveGraphs(mapPath string) (*Graphs, error) {
	g, err := BuildGraphs(mapPath)
	if err != nil {
		return nil, err
	}
	flatPath := mapio.MapToFlatGraphPath(mapPath)
	hierPath := mapio.MapToHierarchicalGraphPath(mapPath)
	if err := persist.SaveFlatGraph(g.Flat, flatPath); err != nil {
		return nil, fmt.Errorf("runner: saving %s: %w", flatPath, err)
	}
	if err := persist.SaveHierarchicalGraph(g.Hierarchical, hierPath); err != nil {
		return nil, fmt.Errorf("runner: saving %s: %w", hierPath, err)
	}
	return g, nil
}

// RunQuery dispatches a single start/goal query to the requested
// algorithm over g.
func RunQuery(g *Graphs, algo Algorithm, k int, start, goal octile.Grid) (*search.Output, error) {
	switch algo {
	case AlgorithmAStar:
		startID, err := g.Flat.NodeIDAt(start)
		if err != nil {
			return nil, err
		}
		goalID, err := g.Flat.NodeIDAt(goal)
		if err != nil {
			return nil, err
		}
		return search.AStar(g.Flat, startID, goalID)
	case AlgorithmPRA:
		return pra.Run(g.Hierarchical, start, goal, k)
	default:
		return nil, ErrUnknownAlgorithm
	}
}

// RunScenario runs sc's query over g with algo/k and logs the original
// engine's per-scenario summary line to stderr via the standard logger.
func RunScenario(g *Graphs, algo Algorithm, k int, sc mapio.Scenario) (*search.Output, error) {
	start := octile.Grid{X: sc.StartX, Y: sc.StartY}
	goal := octile.Grid{X: sc.GoalX, Y: sc.GoalY}

	out, err := RunQuery(g, algo, k, start, goal)
	if err != nil {
		return nil, err
	}

	if search.IsNoPath(out) {
		log.Printf("Solution from (%d,%d) to (%d,%d). No path found.", sc.StartX, sc.StartY, sc.GoalX, sc.GoalY)
	} else {
		log.Printf("Solution from (%d,%d) to (%d,%d). Optimal cost: %.5f, solution cost: %.5f",
			sc.StartX, sc.StartY, sc.GoalX, sc.GoalY, sc.OptimalLength, out.PathCost)
	}
	return out, nil
}

// FailWithUnknownAlgorithm writes the original engine's exact diagnostic
// line and exits with status 1, matching spec.md §6's "Error: Unknown
// algorithm type." contract.
func FailWithUnknownAlgorithm() {
	fmt.Fprintln(os.Stderr, "Error: Unknown algorithm type.")
	os.Exit(1)
}
