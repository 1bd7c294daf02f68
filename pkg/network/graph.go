package network

import (
	"errors"
	"slices"

	"github.com/paulmach/orb"
)

var (
	// ErrInvalidNodeID is returned when a node ID is empty or its position
	// is not finite.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists. Edge IDs are unique across all edge types.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Metadata stores arbitrary key-value pairs attached to the graph, such as
// the run ID and the options a network was built with.
type Metadata map[string]any

// EdgeType classifies an edge. The numeric values are part of the CSV output.
type EdgeType int

const (
	// EdgeFlow is a channel segment, directed downstream.
	EdgeFlow EdgeType = 0
	// EdgeProximity links two nodes closer than a radius. It is always
	// added in both directions.
	EdgeProximity EdgeType = 1
	// EdgeCorrelation is reserved for edges derived from correlated
	// measurements. rivergraph reads and writes them but never creates them.
	EdgeCorrelation EdgeType = 2
)

// String returns a short lowercase name for the edge type.
func (t EdgeType) String() string {
	switch t {
	case EdgeFlow:
		return "flow"
	case EdgeProximity:
		return "proximity"
	case EdgeCorrelation:
		return "correlation"
	}
	return "unknown"
}

// Node is a channel junction, source or outlet.
type Node struct {
	ID  string  // Canonical ID derived from Key
	Key Key     // Quantized position
	Lon float64 // First-seen longitude
	Lat float64 // First-seen latitude
}

// Point returns the node position.
func (n Node) Point() orb.Point { return orb.Point{n.Lon, n.Lat} }

// Edge is a directed connection between two nodes.
type Edge struct {
	ID       int64
	From     string
	To       string
	Name     string         // Channel name, or SpatialLinkName for proximity edges
	LengthKm float64
	Geometry orb.LineString // Segment geometry from From to To
	Type     EdgeType
}

// Graph is a directed multigraph of river nodes and edges.
//
// Nodes and edges are kept in insertion order, which [Assemble] makes
// deterministic. The zero value is not usable; use [New].
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeIDs  map[int64]int
	outgoing map[string][]int // nodeID -> edge positions
	incoming map[string][]int // nodeID -> edge positions
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeIDs:  make(map[int64]int),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node. Returns ErrInvalidNodeID if the ID is empty or
// ErrDuplicateNodeID if the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing, or ErrDuplicateEdgeID if the edge ID is taken. Parallel edges
// and self-loops are allowed.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if _, exists := g.edgeIDs[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	pos := len(g.edges)
	g.edges = append(g.edges, e)
	g.edgeIDs[e.ID] = pos
	g.outgoing[e.From] = append(g.outgoing[e.From], pos)
	g.incoming[e.To] = append(g.incoming[e.To], pos)
	return nil
}

// Subgraph returns a copy of g with every node and the edges for which keep
// reports true, in their original order. A nil keep keeps all edges.
func (g *Graph) Subgraph(keep func(Edge) bool, meta Metadata) *Graph {
	sub := New(meta)
	for _, id := range g.order {
		n := *g.nodes[id]
		sub.nodes[id] = &n
		sub.order = append(sub.order, id)
	}
	for _, e := range g.edges {
		if keep != nil && !keep(e) {
			continue
		}
		pos := len(sub.edges)
		sub.edges = append(sub.edges, e)
		sub.edgeIDs[e.ID] = pos
		sub.outgoing[e.From] = append(sub.outgoing[e.From], pos)
		sub.incoming[e.To] = append(sub.incoming[e.To], pos)
	}
	return sub
}

// Nodes returns all nodes in insertion order.
// The pointers refer to the graph's nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgesOfType returns a copy of the edges of type t in insertion order.
func (g *Graph) EdgesOfType(t EdgeType) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or a zero Edge and false.
func (g *Graph) Edge(id int64) (Edge, bool) {
	pos, ok := g.edgeIDs[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[pos], true
}

// OutEdges returns copies of the edges leaving the node, in insertion order.
func (g *Graph) OutEdges(id string) []Edge { return g.collect(g.outgoing[id]) }

// InEdges returns copies of the edges entering the node, in insertion order.
func (g *Graph) InEdges(id string) []Edge { return g.collect(g.incoming[id]) }

func (g *Graph) collect(positions []int) []Edge {
	if len(positions) == 0 {
		return nil
	}
	out := make([]Edge, len(positions))
	for i, pos := range positions {
		out[i] = g.edges[pos]
	}
	return out
}

// Children returns the IDs of nodes this node has edges to, one entry per
// edge. Returns nil if the node has no outgoing edges or doesn't exist.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, pos := range g.outgoing[id] {
		out = append(out, g.edges[pos].To)
	}
	return out
}

// Parents returns the IDs of nodes with edges to this node, one entry per
// edge. Returns nil if the node has no incoming edges or doesn't exist.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, pos := range g.incoming[id] {
		out = append(out, g.edges[pos].From)
	}
	return out
}

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Linked reports whether an edge of type t runs from one node to the other.
func (g *Graph) Linked(from, to string, t EdgeType) bool {
	for _, pos := range g.outgoing[from] {
		if e := g.edges[pos]; e.To == to && e.Type == t {
			return true
		}
	}
	return false
}

// MaxEdgeID returns the largest edge ID, or 0 for a graph without edges.
func (g *Graph) MaxEdgeID() int64 {
	var maxID int64
	for _, e := range g.edges {
		maxID = max(maxID, e.ID)
	}
	return maxID
}

// Sources returns nodes without incoming flow edges, in insertion order.
// These are channel heads.
func (g *Graph) Sources() []*Node {
	return g.filterNodes(func(id string) bool { return !g.hasFlow(g.incoming[id]) })
}

// Sinks returns nodes without outgoing flow edges, in insertion order.
// These are outlets or dangling tributary ends.
func (g *Graph) Sinks() []*Node {
	return g.filterNodes(func(id string) bool { return !g.hasFlow(g.outgoing[id]) })
}

func (g *Graph) hasFlow(positions []int) bool {
	for _, pos := range positions {
		if g.edges[pos].Type == EdgeFlow {
			return true
		}
	}
	return false
}

func (g *Graph) filterNodes(keep func(id string) bool) []*Node {
	var out []*Node
	for _, id := range g.order {
		if keep(id) {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Validate checks that every edge references existing nodes.
// Returns ErrInvalidEdgeEndpoint otherwise.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		_, okS := g.nodes[e.From]
		_, okD := g.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return nil
}

// HasFlowCycle reports whether following flow edges can return to a node,
// as happens in braided channels or with inconsistent vertex order.
// It runs a depth-first search in O(N+E).
func (g *Graph) HasFlowCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, pos := range g.outgoing[id] {
			e := g.edges[pos]
			if e.Type != EdgeFlow {
				continue
			}
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return true
			}
		}
	}
	return false
}
