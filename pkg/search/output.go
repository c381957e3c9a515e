// Package search implements classical A* (C4) over a graph.FlatGraph, the
// search primitive both the flat-grid planner and each layer of PRA*'s
// hierarchical refinement run on top of.
package search

import (
	"errors"
	"math"
	"time"
)

// Output summarizes a completed search: the counters and timings a caller
// logs or exports to CSV, plus the resulting path.
//
// A search that exhausted its open set without reaching the goal is not
// reported as a Go error: it is a normal, expected outcome (an
// unreachable goal on a disconnected map), so it comes back as an Output
// with PathCost set to the sentinel NoPathCost and PathNodeIDs nil. Use
// IsNoPath to test for it.
type Output struct {
	Expanded          int
	Generated         int
	Duration          time.Duration
	FirstMoveDuration time.Duration
	PathCost          float64
	PathNodeIDs       []uint64
}

// NoPathCost is the sentinel PathCost of an Output describing a search
// that found no route to the goal.
var NoPathCost = math.Inf(1)

// ErrNoPath documents the no-path condition for errors.Is comparisons at
// call sites that wrap an IsNoPath Output into an error of their own;
// AStar and pra.Run never return it directly.
var ErrNoPath = errors.New("search: no path exists between start and goal")

// IsNoPath reports whether out describes a search that found no path.
func IsNoPath(out *Output) bool {
	return out != nil && math.IsInf(out.PathCost, 1)
}

func noPathOutput() *Output {
	return &Output{PathCost: NoPathCost}
}
