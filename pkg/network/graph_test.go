package network

import (
	"errors"
	"testing"
)

func lineGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	if err := g.AddEdge(Edge{ID: 1, From: "a", To: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(Edge{ID: 2, From: "b", To: "c"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "x"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := lineGraph(t)
	tests := []struct {
		name string
		e    Edge
		want error
	}{
		{"unknown source", Edge{ID: 10, From: "z", To: "a"}, ErrUnknownSourceNode},
		{"unknown target", Edge{ID: 10, From: "a", To: "z"}, ErrUnknownTargetNode},
		{"duplicate id", Edge{ID: 1, From: "a", To: "c"}, ErrDuplicateEdgeID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.e); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestGraphQueries(t *testing.T) {
	g := lineGraph(t)

	if got := g.Children("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
	if got := g.Parents("c"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Parents(c) = %v, want [b]", got)
	}
	if g.OutDegree("b") != 1 || g.InDegree("b") != 1 {
		t.Errorf("degree(b) = %d/%d, want 1/1", g.InDegree("b"), g.OutDegree("b"))
	}
	if e, ok := g.Edge(2); !ok || e.From != "b" {
		t.Errorf("Edge(2) = %+v, %v", e, ok)
	}
	if _, ok := g.Edge(99); ok {
		t.Error("Edge(99) found, want missing")
	}
	if got := g.MaxEdgeID(); got != 2 {
		t.Errorf("MaxEdgeID() = %d, want 2", got)
	}
	if !g.Linked("a", "b", EdgeFlow) || g.Linked("b", "a", EdgeFlow) {
		t.Error("Linked() does not respect direction")
	}

	if src := g.Sources(); len(src) != 1 || src[0].ID != "a" {
		t.Errorf("Sources() = %v, want [a]", src)
	}
	if snk := g.Sinks(); len(snk) != 1 || snk[0].ID != "c" {
		t.Errorf("Sinks() = %v, want [c]", snk)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"q", "a", "m", "b"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	for i, n := range g.Nodes() {
		if n.ID != ids[i] {
			t.Fatalf("Nodes()[%d] = %s, want %s", i, n.ID, ids[i])
		}
	}
}

func TestSubgraph(t *testing.T) {
	g := lineGraph(t)
	if err := g.AddEdge(Edge{ID: 3, From: "a", To: "c", Type: EdgeProximity}); err != nil {
		t.Fatal(err)
	}

	sub := g.Subgraph(func(e Edge) bool { return e.Type == EdgeProximity }, Metadata{"k": "v"})
	if sub.NodeCount() != 3 || sub.EdgeCount() != 1 {
		t.Fatalf("Subgraph = %d nodes, %d edges, want 3, 1", sub.NodeCount(), sub.EdgeCount())
	}
	if out := sub.OutEdges("a"); len(out) != 1 || out[0].ID != 3 {
		t.Errorf("OutEdges(a) = %v, want edge 3", out)
	}
	if sub.Meta()["k"] != "v" {
		t.Errorf("Meta = %v", sub.Meta())
	}
	if err := sub.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	all := g.Subgraph(nil, nil)
	if all.EdgeCount() != 3 {
		t.Errorf("Subgraph(nil) edges = %d, want 3", all.EdgeCount())
	}
	all.Nodes()[0].Lon = 9
	if n, _ := g.Node("a"); n.Lon != 0 {
		t.Error("Subgraph shares nodes with its source")
	}
}

func TestEdgesOfType(t *testing.T) {
	g := lineGraph(t)
	_ = g.AddEdge(Edge{ID: 3, From: "a", To: "c", Type: EdgeProximity})

	if got := len(g.EdgesOfType(EdgeFlow)); got != 2 {
		t.Errorf("flow edges = %d, want 2", got)
	}
	if got := len(g.EdgesOfType(EdgeProximity)); got != 1 {
		t.Errorf("proximity edges = %d, want 1", got)
	}
	// Proximity edges do not make c a non-source.
	if src := g.Sources(); len(src) != 1 {
		t.Errorf("Sources() = %d nodes, want 1", len(src))
	}
}

func TestHasFlowCycle(t *testing.T) {
	g := lineGraph(t)
	if g.HasFlowCycle() {
		t.Error("HasFlowCycle() = true for a chain")
	}
	_ = g.AddEdge(Edge{ID: 3, From: "c", To: "a", Type: EdgeProximity})
	if g.HasFlowCycle() {
		t.Error("HasFlowCycle() counts proximity edges")
	}
	_ = g.AddEdge(Edge{ID: 4, From: "c", To: "a"})
	if !g.HasFlowCycle() {
		t.Error("HasFlowCycle() = false, want true")
	}
}

func TestEdgeTypeString(t *testing.T) {
	tests := []struct {
		t    EdgeType
		want string
	}{
		{EdgeFlow, "flow"},
		{EdgeProximity, "proximity"},
		{EdgeCorrelation, "correlation"},
		{EdgeType(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("EdgeType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
