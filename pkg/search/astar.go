package search

import (
	"errors"
	"sync"
	"time"

	"prastar/pkg/graph"
	"prastar/pkg/octile"
	"prastar/pkg/pqueue"
)

// epsilon is the float tolerance used everywhere g/f values are compared,
// so that accumulated floating-point error across a long path never
// causes two costs that are "really" equal to be treated as strictly
// ordered.
const epsilon = 1e-5

// ErrStartNotFound and ErrGoalNotFound are returned when either endpoint
// does not exist in the graph being searched.
var (
	ErrStartNotFound = errors.New("search: start node not found")
	ErrGoalNotFound  = errors.New("search: goal node not found")
)

type arenaNode struct {
	id     uint64
	parent int // index into the arena, or -1 for the start node
	g      float64
	f      float64
}

type openEntry struct {
	id       uint64
	arenaIdx int
}

// queryState bundles the working set a single A* call needs: the closed
// arena, the open priority set, and the closed-id→arena-index map. PRA*
// runs A* once per hierarchy layer per outer refinement round, so this
// is pooled the same way the teacher's routing.Engine.qsPool reuses a
// QueryState across successive Dijkstra queries instead of reallocating
// the arena/map/heap on every call.
type queryState struct {
	arena  []arenaNode
	closed map[uint64]int
	open   *pqueue.Set[openEntry]
}

func newQueryState() *queryState {
	qs := &queryState{
		arena:  make([]arenaNode, 0, 64),
		closed: make(map[uint64]int),
	}
	qs.open = pqueue.New(
		func(a, b openEntry) bool {
			na, nb := qs.arena[a.arenaIdx], qs.arena[b.arenaIdx]
			if isLess(na.f, nb.f) {
				return true
			}
			if isLess(nb.f, na.f) {
				return false
			}
			return isGreater(na.g, nb.g)
		},
		func(e openEntry) uint64 { return e.id },
	)
	return qs
}

func (qs *queryState) reset() {
	qs.arena = qs.arena[:0]
	for k := range qs.closed {
		delete(qs.closed, k)
	}
	qs.open.Clear()
}

var statePool = sync.Pool{New: func() any { return newQueryState() }}

func isGreater(a, b float64) bool {
	return a > b+epsilon
}

func isLess(a, b float64) bool {
	return a < b-epsilon
}

// AStar runs classical A* from startID to goalID over g, using octile
// distance over node positions as both edge cost and heuristic. g may be
// a base grid layer or any abstraction layer of a HierarchicalGraph;
// whatever restriction set is currently installed on g (see
// FlatGraph.SetConstrainedNodes) bounds which nodes GetNeighbours exposes.
func AStar(g *graph.FlatGraph, startID, goalID uint64) (*Output, error) {
	start := time.Now()

	if !g.HasNode(startID) {
		return nil, ErrStartNotFound
	}
	if !g.HasNode(goalID) {
		return nil, ErrGoalNotFound
	}

	goalNode := g.Node(goalID)
	heuristic := func(id uint64) float64 {
		return octile.AbstractDistance(g.Node(id).Position, goalNode.Position)
	}

	qs := statePool.Get().(*queryState)
	defer func() {
		qs.reset()
		statePool.Put(qs)
	}()

	qs.arena = append(qs.arena, arenaNode{id: startID, parent: -1, g: 0, f: heuristic(startID)})
	qs.open.Insert(openEntry{id: startID, arenaIdx: 0})

	out := &Output{}
	firstExpansion := true

	for !qs.open.Empty() {
		top := qs.open.Top()
		qs.open.Pop()
		u := top.arenaIdx
		uID := qs.arena[u].id

		if uID == goalID {
			out.PathCost = qs.arena[u].g
			out.PathNodeIDs = reconstructPath(qs.arena, u)
			out.Duration = time.Since(start)
			return out, nil
		}

		qs.closed[uID] = u
		out.Expanded++

		uPos := g.Node(uID).Position
		for _, vID := range g.GetNeighbours(uID) {
			edgeCost := octile.AbstractDistance(uPos, g.Node(vID).Position)
			tentativeG := qs.arena[u].g + edgeCost
			debugCheckConsistency(heuristic(uID), edgeCost, heuristic(vID))

			// Re-expansion branch: a closed node only gets reopened if
			// this path to it is strictly cheaper, which a consistent
			// heuristic like octile distance should never produce. The
			// check is kept so an inconsistent heuristic on some future
			// abstraction layer degrades gracefully instead of silently
			// missing a cheaper route.
			if closedIdx, done := qs.closed[vID]; done {
				if isLess(tentativeG, qs.arena[closedIdx].g) {
					qs.arena[closedIdx].g = tentativeG
					qs.arena[closedIdx].f = tentativeG + heuristic(vID)
					qs.arena[closedIdx].parent = u
					delete(qs.closed, vID)
					qs.open.Insert(openEntry{id: vID, arenaIdx: closedIdx})
					out.Generated++
				}
				continue
			}

			if existing, ok := qs.open.Get(vID); ok {
				if isLess(tentativeG, qs.arena[existing.arenaIdx].g) {
					qs.arena[existing.arenaIdx].g = tentativeG
					qs.arena[existing.arenaIdx].f = tentativeG + heuristic(vID)
					qs.arena[existing.arenaIdx].parent = u
					qs.open.Update(existing)
					out.Generated++
				}
				continue
			}

			qs.arena = append(qs.arena, arenaNode{
				id:     vID,
				parent: u,
				g:      tentativeG,
				f:      tentativeG + heuristic(vID),
			})
			out.Generated++
			qs.open.Insert(openEntry{id: vID, arenaIdx: len(qs.arena) - 1})
		}

		if firstExpansion {
			out.FirstMoveDuration = time.Since(start)
			firstExpansion = false
		}
	}

	result := noPathOutput()
	result.Expanded = out.Expanded
	result.Generated = out.Generated
	result.Duration = time.Since(start)
	result.FirstMoveDuration = out.FirstMoveDuration
	return result, nil
}

func reconstructPath(arena []arenaNode, goalIdx int) []uint64 {
	var path []uint64
	for idx := goalIdx; idx != -1; idx = arena[idx].parent {
		path = append(path, arena[idx].id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
