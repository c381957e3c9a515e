package pra

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"prastar/pkg/octile"
)

// ErrEmptyPositionSet is returned by NearestPosition when given an empty
// represented-positions set.
var ErrEmptyPositionSet = errors.New("pra: represented-positions set is empty")

// inlineThreshold is the represented-positions set size above which
// NearestPosition builds an ephemeral R-tree instead of scanning linearly.
// The refinement cascade (pra.go) calls this once per hierarchy node per
// outer round, and a top-layer node's represented_positions can number in
// the thousands on a large map, so a plain scan would undo the whole
// point of the abstraction hierarchy on those nodes.
const inlineThreshold = 32

// NearestPosition returns the grid position in positions closest to ref
// under octile distance, breaking ties by lowest X then lowest Y.
func NearestPosition(positions map[octile.Grid]struct{}, ref octile.Grid) (octile.Grid, error) {
	if len(positions) == 0 {
		return octile.Grid{}, ErrEmptyPositionSet
	}
	if len(positions) <= inlineThreshold {
		return linearNearest(positions, ref), nil
	}
	return buildPositionIndex(positions).nearest(ref), nil
}

func linearNearest(positions map[octile.Grid]struct{}, ref octile.Grid) octile.Grid {
	best := octile.Grid{}
	bestDist := math.Inf(1)
	first := true
	for p := range positions {
		d := octile.GridDistance(p, ref)
		if first || d < bestDist-1e-12 || (math.Abs(d-bestDist) <= 1e-12 && less(p, best)) {
			best, bestDist, first = p, d, false
		}
	}
	return best
}

func less(a, b octile.Grid) bool {
	return a.X < b.X || (a.X == b.X && a.Y < b.Y)
}

// positionIndex is an ephemeral R-tree over a single node's represented
// grid positions, built once per NearestPosition call above
// inlineThreshold and discarded after the query (spec.md's D.1 domain
// stack section: each hierarchy node's represented_positions set, once
// larger than the inline threshold, is indexed for its nearest-position
// query rather than scanned).
type positionIndex struct {
	tree rtree.RTree
}

func buildPositionIndex(positions map[octile.Grid]struct{}) *positionIndex {
	idx := &positionIndex{}
	for p := range positions {
		point := [2]float64{float64(p.X), float64(p.Y)}
		idx.tree.Insert(point, point, p)
	}
	return idx
}

func (idx *positionIndex) search(min, max [2]float64) []octile.Grid {
	var out []octile.Grid
	idx.tree.Search(min, max, func(_, _ [2]float64, value interface{}) bool {
		out = append(out, value.(octile.Grid))
		return true
	})
	return out
}

// nearest mirrors NearestPosition's tie-break contract but runs over the
// tree via a box-expansion ring search, doubling the search radius from
// 1.0 until a candidate turns up, then re-searching once at a radius
// equal to the best distance found so far (v1.10.x of the rtree package
// exposes only a range Search, not a native k-NN query, so the ring
// search is how a "nearest" answer is built on top of it).
func (idx *positionIndex) nearest(ref octile.Grid) octile.Grid {
	query := octile.Abstract{X: float64(ref.X), Y: float64(ref.Y)}

	best := octile.Grid{}
	bestDist := math.Inf(1)
	found := false

	radius := 1.0
	for attempt := 0; attempt < 64 && !found; attempt++ {
		min := [2]float64{query.X - radius, query.Y - radius}
		max := [2]float64{query.X + radius, query.Y + radius}
		for _, p := range idx.search(min, max) {
			d := octile.GridDistance(p, ref)
			if d < bestDist {
				bestDist, best, found = d, p, true
			}
		}
		radius *= 2
	}

	min := [2]float64{query.X - bestDist, query.Y - bestDist}
	max := [2]float64{query.X + bestDist, query.Y + bestDist}
	for _, p := range idx.search(min, max) {
		d := octile.GridDistance(p, ref)
		if d < bestDist-1e-12 || (math.Abs(d-bestDist) <= 1e-12 && less(p, best)) {
			bestDist, best = d, p
		}
	}
	return best
}
