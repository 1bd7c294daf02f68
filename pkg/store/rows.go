package store

import (
	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
)

var (
	nodeColumns = []string{"run_id", "node_id", "lon", "lat"}
	edgeColumns = []string{"run_id", "edge_id", "from_node_id", "to_node_id", "river_name", "length_km", "wkt", "edge_type"}
)

func nodeRows(runID string, g *network.Graph) [][]any {
	rows := make([][]any, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		rows = append(rows, []any{runID, n.ID, n.Lon, n.Lat})
	}
	return rows
}

func edgeRows(runID string, g *network.Graph) [][]any {
	rows := make([][]any, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		rows = append(rows, []any{
			runID, e.ID, e.From, e.To, e.Name, e.LengthKm, rgio.EdgeWKT(e), int(e.Type),
		})
	}
	return rows
}

// nodeDoc is the MongoDB document for a node. The position is a GeoJSON
// point so a 2dsphere index can be built on it.
type nodeDoc struct {
	RunID    string   `bson:"run_id"`
	NodeID   string   `bson:"node_id"`
	Location geoPoint `bson:"location"`
}

type geoPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

type edgeDoc struct {
	RunID     string   `bson:"run_id"`
	EdgeID    int64    `bson:"edge_id"`
	From      string   `bson:"from_node_id"`
	To        string   `bson:"to_node_id"`
	RiverName string   `bson:"river_name"`
	LengthKm  float64  `bson:"length_km"`
	EdgeType  int      `bson:"edge_type"`
	Geometry  *geoLine `bson:"geometry,omitempty"`
}

type geoLine struct {
	Type        string       `bson:"type"`
	Coordinates [][2]float64 `bson:"coordinates"`
}

func nodeDocs(runID string, g *network.Graph) []any {
	docs := make([]any, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		docs = append(docs, nodeDoc{
			RunID:    runID,
			NodeID:   n.ID,
			Location: geoPoint{Type: "Point", Coordinates: [2]float64{n.Lon, n.Lat}},
		})
	}
	return docs
}

func edgeDocs(runID string, g *network.Graph) []any {
	docs := make([]any, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		d := edgeDoc{
			RunID:     runID,
			EdgeID:    e.ID,
			From:      e.From,
			To:        e.To,
			RiverName: e.Name,
			LengthKm:  e.LengthKm,
			EdgeType:  int(e.Type),
		}
		if len(e.Geometry) >= 2 {
			line := &geoLine{Type: "LineString", Coordinates: make([][2]float64, len(e.Geometry))}
			for i, p := range e.Geometry {
				line.Coordinates[i] = p
			}
			d.Geometry = line
		}
		docs = append(docs, d)
	}
	return docs
}
