package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/network"
)

type graph struct {
	Meta  network.Metadata `json:"meta,omitempty"`
	Nodes []node           `json:"nodes"`
	Edges []edge           `json:"edges"`
}

type node struct {
	ID  string  `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type edge struct {
	ID       int64            `json:"id"`
	From     string           `json:"from"`
	To       string           `json:"to"`
	Name     string           `json:"name"`
	LengthKm float64          `json:"length_km"`
	Type     network.EdgeType `json:"type"`
	Geometry orb.LineString   `json:"geometry,omitempty"`
}

// WriteJSON encodes a graph as JSON and writes it to w.
// Nodes and edges keep graph order, so the output can be re-imported with
// [ReadJSON] into an identical graph.
func WriteJSON(g *network.Graph, w io.Writer) error {
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{ID: n.ID, Lon: n.Lon, Lat: n.Lat})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{
			ID:       e.ID,
			From:     e.From,
			To:       e.To,
			Name:     e.Name,
			LengthKm: e.LengthKm,
			Type:     e.Type,
			Geometry: e.Geometry,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph written by [WriteJSON].
//
// ReadJSON returns an error if the JSON is malformed, a node ID repeats, or
// an edge references an unknown node or repeats an edge ID. Errors are
// wrapped with the offending node or edge; use errors.Is to match the
// network sentinel errors.
func ReadJSON(r io.Reader) (*network.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := network.New(data.Meta)
	for _, n := range data.Nodes {
		nd := network.Node{ID: n.ID, Key: nodeKey(n.ID, n.Lon, n.Lat), Lon: n.Lon, Lat: n.Lat}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(network.Edge{
			ID:       e.ID,
			From:     e.From,
			To:       e.To,
			Name:     e.Name,
			LengthKm: e.LengthKm,
			Geometry: e.Geometry,
			Type:     e.Type,
		}); err != nil {
			return nil, fmt.Errorf("edge %d %s->%s: %w", e.ID, e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a graph from the JSON file at path.
func ImportJSON(path string) (*network.Graph, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// ExportJSON writes a graph to a JSON file at path.
func ExportJSON(g *network.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// writeFile creates path and streams content into it, reporting close
// errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
