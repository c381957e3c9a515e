package graph

import "prastar/pkg/octile"

// HierarchicalGraph is a stack of FlatGraph layers, layer 0 being the
// original grid graph and each layer above it the clique abstraction of
// the one below. Construction stops once a layer has at most one node or
// no edges left to abstract over: further clustering could not produce a
// smaller, better-connected layer.
type HierarchicalGraph struct {
	layers      []*FlatGraph
	parentChild []ParentChildMap // parentChild[i] maps layers[i+1]'s node ids to layers[i]'s node ids
	childParent []map[uint64]uint64 // childParent[i] maps layers[i]'s node ids to layers[i+1]'s node ids
}

// BuildHierarchicalGraph repeatedly abstracts base until the topmost layer
// collapses to a single node or loses all edges.
func BuildHierarchicalGraph(base *FlatGraph) *HierarchicalGraph {
	h := &HierarchicalGraph{layers: []*FlatGraph{base}}
	for {
		current := h.layers[len(h.layers)-1]
		if current.NodeCount() <= 1 || current.EdgeCount() == 0 {
			break
		}
		next, pc := BuildAbstractLayer(current)
		h.layers = append(h.layers, next)
		h.parentChild = append(h.parentChild, pc)

		inverse := make(map[uint64]uint64, current.NodeCount())
		for parent, children := range pc {
			for _, child := range children {
				inverse[child] = parent
			}
		}
		h.childParent = append(h.childParent, inverse)
	}
	return h
}

// NumLayers returns the number of layers, including the base grid layer.
func (h *HierarchicalGraph) NumLayers() int { return len(h.layers) }

// Layer returns the FlatGraph at the given layer index (0 = base grid).
func (h *HierarchicalGraph) Layer(idx int) *FlatGraph {
	return h.layers[idx]
}

// ParentChildMapping returns the mapping from layer idx+1's node ids to
// their children's ids in layer idx. It panics if idx is the topmost layer
// (there is no layer above it to map from).
func (h *HierarchicalGraph) ParentChildMapping(idx int) ParentChildMap {
	return h.parentChild[idx]
}

// AssembleHierarchicalGraph builds a HierarchicalGraph directly from
// already-constructed layers and parent-child mappings, as read back from
// a persisted file by pkg/persist. len(parentChild) must equal
// len(layers)-1.
func AssembleHierarchicalGraph(layers []*FlatGraph, parentChild []ParentChildMap) *HierarchicalGraph {
	h := &HierarchicalGraph{layers: layers, parentChild: parentChild}
	h.childParent = make([]map[uint64]uint64, len(parentChild))
	for i, pc := range parentChild {
		inverse := make(map[uint64]uint64)
		for parent, children := range pc {
			for _, child := range children {
				inverse[child] = parent
			}
		}
		h.childParent[i] = inverse
	}
	return h
}

// NodeIDAtLayer climbs from the base grid position pos up to the node
// that represents it at layer idx, following the parent-child chain one
// layer at a time. It returns ErrInvalidPosition if pos has no node at
// layer 0.
func (h *HierarchicalGraph) NodeIDAtLayer(pos octile.Grid, idx int) (uint64, error) {
	id, err := h.layers[0].NodeIDAt(pos)
	if err != nil {
		return 0, err
	}
	for l := 0; l < idx; l++ {
		id = h.childParent[l][id]
	}
	return id, nil
}

