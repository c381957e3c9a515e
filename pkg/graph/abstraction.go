package graph

import (
	"sort"

	"prastar/pkg/octile"
)

// clique is a small, bounded-size set of node ids that all abstract into
// a single node at the next layer up.
type clique struct {
	members []uint64
}

// isClique reports whether every distinct pair of members is adjacent in g.
//
// The original C++ iterates member pairs starting the inner loop at index
// 1 and comparing against index 0 only, which misses most pairs once a
// clique has more than two members and silently accepts non-cliques as
// valid K3/K4 abstractions. This implementation checks every distinct
// ordered pair, the behavior spec.md calls for explicitly.
func isClique(g *FlatGraph, members []uint64) bool {
	for i := 0; i < len(members); i++ {
		for j := 0; j < len(members); j++ {
			if i == j {
				continue
			}
			if !g.AreNeighbours(members[i], members[j]) {
				return false
			}
		}
	}
	return true
}

// isCandidate reports whether adding next to members could still grow
// into a clique: next must be adjacent to every current member.
func isCandidate(g *FlatGraph, members []uint64, next uint64) bool {
	for _, m := range members {
		if !g.AreNeighbours(m, next) {
			return false
		}
	}
	return true
}

// findCliqueOfSize performs a bounded local probe from seed, trying to
// grow a clique of exactly size nodes out of seed's neighbourhood. It
// returns nil if no such clique could be formed from seed's immediate
// neighbours within the degree bound the caller already checked.
func findCliqueOfSize(g *FlatGraph, used map[uint64]bool, seed uint64, size int) []uint64 {
	if size == 1 {
		return []uint64{seed}
	}
	neighbours := g.GetNeighbours(seed)
	sort.Slice(neighbours, func(i, j int) bool { return neighbours[i] < neighbours[j] })

	members := []uint64{seed}
	var backtrack func(start int) bool
	backtrack = func(start int) bool {
		if len(members) == size {
			return isClique(g, members)
		}
		for i := start; i < len(neighbours); i++ {
			cand := neighbours[i]
			if used[cand] {
				continue
			}
			if !isCandidate(g, members, cand) {
				continue
			}
			members = append(members, cand)
			if backtrack(i + 1) {
				return true
			}
			members = members[:len(members)-1]
		}
		return false
	}
	if backtrack(0) {
		out := make([]uint64, len(members))
		copy(out, members)
		return out
	}
	return nil
}

// buildCliques partitions every node of g into disjoint cliques, preferring
// larger cliques first: nodes of degree >= 3 are tried for a 4-clique,
// degree >= 2 for a 3-clique, degree >= 1 for a 2-clique (an edge), and
// anything left over (including degree-0 islands) becomes a singleton.
// Degree-1 islands that failed to join any larger clique are absorbed
// into a neighbour's clique rather than left as their own singleton.
func buildCliques(g *FlatGraph) []clique {
	used := make(map[uint64]bool)
	var cliques []clique
	nodeToClique := make(map[uint64]int)

	ids := g.AllNodeIDs()

	tryBuild := func(minDegree, size int) {
		for _, id := range ids {
			if used[id] {
				continue
			}
			if g.NodeDegree(id) < minDegree {
				continue
			}
			members := findCliqueOfSize(g, used, id, size)
			if members == nil {
				continue
			}
			idx := len(cliques)
			cliques = append(cliques, clique{members: members})
			for _, m := range members {
				used[m] = true
				nodeToClique[m] = idx
			}
		}
	}

	tryBuild(3, 4)
	tryBuild(2, 3)
	tryBuild(1, 2)

	// Island absorption: a degree-1 node left unclaimed joins whichever
	// clique its single neighbour ended up in.
	for _, id := range ids {
		if used[id] {
			continue
		}
		if g.NodeDegree(id) != 1 {
			continue
		}
		neighbour := g.GetNeighbours(id)[0]
		if idx, ok := nodeToClique[neighbour]; ok {
			cliques[idx].members = append(cliques[idx].members, id)
			used[id] = true
		}
	}

	// Singleton fallback for everything still unclaimed.
	for _, id := range ids {
		if used[id] {
			continue
		}
		cliques = append(cliques, clique{members: []uint64{id}})
		used[id] = true
	}

	return cliques
}

// averagePosition returns the centroid of members' abstract positions,
// weighted by how many grid positions each member itself represents
// (not by raw member count), so a cluster formed from an already-abstract
// high layer does not let a single big sub-cluster's position get diluted
// by neighbouring small ones.
func averagePosition(g *FlatGraph, members []uint64) octile.Abstract {
	var sumX, sumY float64
	var weight float64
	for _, id := range members {
		n := g.Node(id)
		w := float64(len(n.RepresentedPositions))
		sumX += n.Position.X * w
		sumY += n.Position.Y * w
		weight += w
	}
	if weight == 0 {
		return octile.Abstract{}
	}
	return octile.Abstract{X: sumX / weight, Y: sumY / weight}
}

// collectRepresentedPositions returns the union of every member's
// represented-position set.
func collectRepresentedPositions(g *FlatGraph, members []uint64) map[octile.Grid]struct{} {
	out := make(map[octile.Grid]struct{})
	for _, id := range members {
		for p := range g.Node(id).RepresentedPositions {
			out[p] = struct{}{}
		}
	}
	return out
}

// ParentChildMap records, for each node of an abstract layer, the ids of
// the lower-layer nodes it was built from.
type ParentChildMap map[uint64][]uint64

// BuildAbstractLayer partitions lower's nodes into cliques and returns the
// next layer up, one node per clique, along with the parent->children
// mapping (parent ids are in the returned layer, children ids are in
// lower). Edges are lifted between two abstract nodes whenever any member
// of one clique is adjacent, in lower, to any member of the other.
func BuildAbstractLayer(lower *FlatGraph) (*FlatGraph, ParentChildMap) {
	cliques := buildCliques(lower)

	upper := NewFlatGraph()
	parentChild := make(ParentChildMap, len(cliques))

	for i, c := range cliques {
		parentID := uint64(i)
		node := Node{
			ID:                   parentID,
			Position:             averagePosition(lower, c.members),
			RepresentedPositions: collectRepresentedPositions(lower, c.members),
		}
		upper.AddNode(node)
		children := make([]uint64, len(c.members))
		copy(children, c.members)
		sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
		parentChild[parentID] = children
	}

	for i := 0; i < len(cliques); i++ {
		for j := i + 1; j < len(cliques); j++ {
			if cliquesAdjacent(lower, cliques[i].members, cliques[j].members) {
				upper.AddEdge(uint64(i), uint64(j))
			}
		}
	}

	return upper, parentChild
}

func cliquesAdjacent(g *FlatGraph, a, b []uint64) bool {
	for _, x := range a {
		for _, y := range b {
			if g.AreNeighbours(x, y) {
				return true
			}
		}
	}
	return false
}
