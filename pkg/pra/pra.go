// Package pra implements PRA* (Partial Refinement A*, C7): a hierarchical
// search that starts at layer num_layers()/2 of a graph.HierarchicalGraph
// and works its way back down to the base grid one layer at a time,
// truncating each layer's A* path to a window of K nodes, constraining
// the next layer down to the corridor those nodes' children cover, and
// picking the next layer's goal as the grid position (among the
// candidates the layer above settled on) closest to the user's ultimate
// goal. The outer loop repeats this cascade, advancing from wherever the
// previous round's truncated path left off, until the ground-layer
// refinement actually reaches the goal.
package pra

import (
	"math"
	"time"

	"prastar/pkg/graph"
	"prastar/pkg/octile"
	"prastar/pkg/search"
)

// Unbounded disables the truncation window: every refinement round
// commits the full path a layer's search produced instead of cutting it
// to K nodes. Passing this for K matches the original engine's behavior
// when the caller requests K=0.
const Unbounded = 0

// Run finds a path from start to goal over h using hierarchical
// refinement starting at layer num_layers()/2. k bounds how many nodes
// of each round's path are trusted before the next round re-queries
// from wherever the previous one stopped; pass pra.Unbounded for no limit.
func Run(h *graph.HierarchicalGraph, start, goal octile.Grid, k int) (*search.Output, error) {
	begin := time.Now()
	if k == Unbounded {
		k = math.MaxInt
	}

	startingLevel := h.NumLayers() / 2

	if _, err := h.Layer(0).NodeIDAt(start); err != nil {
		return nil, err
	}
	if _, err := h.Layer(0).NodeIDAt(goal); err != nil {
		return nil, err
	}

	out := &search.Output{}
	solutionPath := []octile.Grid{start}

	currentStart := start
	firstRound := true

	for {
		currentGoal := goal
		constrained := map[uint64]struct{}{}
		var groundPath []uint64

		for i := 0; i <= startingLevel; i++ {
			currentLevel := startingLevel - i
			layer := h.Layer(currentLevel)
			layer.SetConstrainedNodes(constrained)

			startID, err := layer.NodeIDAt(currentStart)
			if err != nil {
				layer.ClearConstrainedNodes()
				return nil, err
			}
			goalID, err := layer.NodeIDAt(currentGoal)
			if err != nil {
				layer.ClearConstrainedNodes()
				return nil, err
			}

			astarOut, err := search.AStar(layer, startID, goalID)
			layer.ClearConstrainedNodes()
			if err != nil {
				return nil, err
			}
			accumulate(out, astarOut)
			if search.IsNoPath(astarOut) {
				return noPathOutput(out), nil
			}

			path := truncate(astarOut.PathNodeIDs, k)
			if currentLevel == 0 {
				groundPath = path
			}

			tailID := path[len(path)-1]
			candidates := layer.Node(tailID).RepresentedPositions

			if i < startingLevel {
				childLevel := currentLevel - 1
				childIDs := h.ParentChildMapping(childLevel)[tailID]
				closestChildID, err := closestChild(h.Layer(childLevel), childIDs, currentGoal, goal)
				if err != nil {
					return nil, err
				}
				candidates = h.Layer(childLevel).Node(closestChildID).RepresentedPositions
			}

			nextGoal, err := NearestPosition(candidates, goal)
			if err != nil {
				return nil, err
			}
			currentGoal = nextGoal

			constrained = map[uint64]struct{}{}
			if i < startingLevel {
				childLevel := currentLevel - 1
				pc := h.ParentChildMapping(childLevel)
				for _, nodeID := range path {
					for _, child := range pc[nodeID] {
						constrained[child] = struct{}{}
					}
				}
			}
		}

		// groundPath always has at least one entry (the invariant A*
		// upholds: a truncated path is never empty), so index 0 is the
		// node currentStart already sat on; only [1:) is new movement.
		for _, id := range groundPath[1:] {
			solutionPath = append(solutionPath, h.Layer(0).Node(id).AnyRepresentedPosition())
		}

		if firstRound {
			out.FirstMoveDuration = time.Since(begin)
			firstRound = false
		}

		currentStart = currentGoal
		if currentGoal == goal {
			break
		}
	}

	out.PathCost = 0
	out.PathNodeIDs = make([]uint64, len(solutionPath))
	for i, pos := range solutionPath {
		id, err := h.Layer(0).NodeIDAt(pos)
		if err != nil {
			return nil, err
		}
		out.PathNodeIDs[i] = id
		if i > 0 {
			out.PathCost += octile.GridDistance(solutionPath[i-1], pos)
		}
	}
	out.Duration = time.Since(begin)
	return out, nil
}

// closestChild picks the child of the layer-above's truncated-path tail
// whose nearest represented position to currentGoal is, in turn, closest
// to the ultimate goal. The inner selector keys off currentGoal while the
// outer comparison keys off goal: a mixed reference reproduced exactly as
// the original engine computes it (pra_star.cpp) rather than "fixed", per
// this system's open-question policy on ambiguous original behavior.
func closestChild(childLayer *graph.FlatGraph, childIDs []uint64, currentGoal, goal octile.Grid) (uint64, error) {
	var best uint64
	bestDist := math.Inf(1)
	first := true
	for _, childID := range childIDs {
		p, err := NearestPosition(childLayer.Node(childID).RepresentedPositions, currentGoal)
		if err != nil {
			return 0, err
		}
		d := octile.GridDistance(p, goal)
		if first || d < bestDist {
			best, bestDist, first = childID, d, false
		}
	}
	return best, nil
}

func truncate(path []uint64, k int) []uint64 {
	if k < len(path) {
		return path[:k]
	}
	return path
}

func accumulate(dst, src *search.Output) {
	dst.Expanded += src.Expanded
	dst.Generated += src.Generated
}

// noPathOutput turns partial into a terminal no-path Output, preserving
// the Expanded/Generated counters accumulated before the layer that
// found no route ended the search, matching search.IsNoPath's sentinel
// convention instead of returning a Go error for an unreachable goal.
func noPathOutput(partial *search.Output) *search.Output {
	return &search.Output{
		Expanded:  partial.Expanded,
		Generated: partial.Generated,
		PathCost:  search.NoPathCost,
	}
}
