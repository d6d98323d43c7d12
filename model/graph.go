package model

// TruncationReason tells why a traversal stopped before exploring everything.
type TruncationReason string

const (
	TruncationNone       TruncationReason = ""
	TruncationNodeLimit  TruncationReason = "node_limit"
	TruncationDepthLimit TruncationReason = "depth_limit"
	TruncationCancelled  TruncationReason = "cancelled"
)

// Graph is the result of a traversal: the root, every reached entity and the
// accepted relations between them. Nodes are in discovery order and edges in
// acceptance order. A Graph is not modified after it has been built.
type Graph struct {
	Root             Entity           `json:"root"`
	Nodes            []Entity         `json:"nodes"`
	Edges            []Edge           `json:"edges"`
	Truncated        bool             `json:"truncated"`
	TruncationReason TruncationReason `json:"truncation_reason,omitempty"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// ContainsNode reports whether entity is a node of the graph.
func (g *Graph) ContainsNode(entity Entity) bool {
	for _, n := range g.Nodes {
		if n == entity {
			return true
		}
	}
	return false
}

// ContainsEdge reports whether the edge is part of the graph.
func (g *Graph) ContainsEdge(edge Edge) bool {
	for _, e := range g.Edges {
		if e == edge {
			return true
		}
	}
	return false
}
