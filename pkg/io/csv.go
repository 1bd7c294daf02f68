package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/network"
)

var (
	nodeColumns = []string{"node_id", "lon", "lat"}
	edgeColumns = []string{"edge_id", "from_node_id", "to_node_id", "river_name", "length_km", "wkt", "edge_type"}
)

// WriteNodesCSV writes one row per node in graph order.
func WriteNodesCSV(g *network.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nodeColumns); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		if err := cw.Write([]string{n.ID, formatFloat(n.Lon), formatFloat(n.Lat)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgesCSV writes one row per edge in graph order.
func WriteEdgesCSV(g *network.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgeColumns); err != nil {
		return err
	}
	for _, e := range g.Edges() {
		if err := cw.Write(edgeRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func edgeRecord(e network.Edge) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.From,
		e.To,
		e.Name,
		formatFloat(e.LengthKm),
		EdgeWKT(e),
		strconv.Itoa(int(e.Type)),
	}
}

// EdgeWKT returns the edge geometry as well-known text, or "" when the edge
// has none.
func EdgeWKT(e network.Edge) string {
	if len(e.Geometry) == 0 {
		return ""
	}
	return wkt.MarshalString(e.Geometry)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadCSV rebuilds a graph from nodes.csv and edges.csv content.
// Columns are located by header name, so extra columns are ignored. Edges
// without an edge_type column are flow edges.
func ReadCSV(nodes, edges io.Reader) (*network.Graph, error) {
	g := network.New(nil)

	nr, err := newTable(nodes, "node_id", "lon", "lat")
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}
	for {
		rec, err := nr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("nodes: %w", err)
		}
		n, err := parseNode(nr, rec)
		if err != nil {
			return nil, fmt.Errorf("nodes line %d: %w", nr.line, err)
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	er, err := newTable(edges, "edge_id", "from_node_id", "to_node_id")
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}
	for {
		rec, err := er.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("edges: %w", err)
		}
		e, err := parseEdge(er, rec)
		if err != nil {
			return nil, fmt.Errorf("edges line %d: %w", er.line, err)
		}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %d: %w", e.ID, err)
		}
	}
	return g, nil
}

func parseNode(t *table, rec []string) (network.Node, error) {
	id := t.get(rec, "node_id")
	lon, err := strconv.ParseFloat(t.get(rec, "lon"), 64)
	if err != nil {
		return network.Node{}, fmt.Errorf("lon: %w", err)
	}
	lat, err := strconv.ParseFloat(t.get(rec, "lat"), 64)
	if err != nil {
		return network.Node{}, fmt.Errorf("lat: %w", err)
	}
	return network.Node{ID: id, Key: nodeKey(id, lon, lat), Lon: lon, Lat: lat}, nil
}

func parseEdge(t *table, rec []string) (network.Edge, error) {
	id, err := strconv.ParseInt(t.get(rec, "edge_id"), 10, 64)
	if err != nil {
		return network.Edge{}, fmt.Errorf("edge_id: %w", err)
	}
	e := network.Edge{
		ID:   id,
		From: t.get(rec, "from_node_id"),
		To:   t.get(rec, "to_node_id"),
		Name: t.get(rec, "river_name"),
	}
	if s := t.get(rec, "length_km"); s != "" {
		if e.LengthKm, err = strconv.ParseFloat(s, 64); err != nil {
			return e, fmt.Errorf("length_km: %w", err)
		}
	}
	if s := t.get(rec, "edge_type"); s != "" {
		typ, err := strconv.Atoi(s)
		if err != nil {
			return e, fmt.Errorf("edge_type: %w", err)
		}
		e.Type = network.EdgeType(typ)
	}
	if s := t.get(rec, "wkt"); s != "" {
		ls, err := wkt.UnmarshalLineString(s)
		if err != nil {
			return e, fmt.Errorf("wkt: %w", err)
		}
		e.Geometry = ls
	}
	return e, nil
}

// nodeKey recovers the quantized key from a node ID, falling back to the
// node position for IDs written by other tools.
func nodeKey(id string, lon, lat float64) network.Key {
	if k, err := network.ParseKey(id); err == nil {
		return k
	}
	return network.KeyOf(orb.Point{lon, lat})
}

// table reads CSV records and resolves columns by header name.
type table struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{r: cr, cols: make(map[string]int, len(header)), line: 1}
	for i, name := range header {
		t.cols[name] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return t, nil
}

func (t *table) next() ([]string, error) {
	t.line++
	return t.r.Read()
}

func (t *table) get(rec []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// ImportCSV reads a graph from nodes.csv and edges.csv files.
func ImportCSV(nodesPath, edgesPath string) (*network.Graph, error) {
	nf, err := openFile(nodesPath)
	if err != nil {
		return nil, err
	}
	defer nf.Close()
	ef, err := openFile(edgesPath)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	g, err := ReadCSV(nf, ef)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s, %s", nodesPath, edgesPath)
	}
	return g, nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
