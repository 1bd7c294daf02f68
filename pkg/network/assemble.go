package network

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
)

// LengthMethod selects how edge lengths are measured.
type LengthMethod string

const (
	// LengthPlanar multiplies the planar length in degrees by 111 km.
	LengthPlanar LengthMethod = "planar"
	// LengthHaversine sums great-circle distances between vertices.
	LengthHaversine LengthMethod = "haversine"
)

// DefaultStartEdgeID is the first edge ID assigned when none is configured.
const DefaultStartEdgeID = 1

// AssembleOptions configures [Assemble].
type AssembleOptions struct {
	// StartEdgeID is the ID of the first edge. Callers merging with an
	// existing edge table pass max(existing)+1. Zero means DefaultStartEdgeID.
	StartEdgeID int64

	// LengthMethod selects edge length measurement. Empty means LengthPlanar.
	LengthMethod LengthMethod

	// Meta is stored as graph-level metadata.
	Meta Metadata
}

// Assemble builds the flow graph from segmented lines.
//
// segments[i] holds the segments of line i in order. Segments are visited by
// (line, segment) and each non-degenerate segment becomes one flow edge from
// its first to its last vertex, with IDs assigned consecutively from
// StartEdgeID. Endpoints are deduplicated by their quantized [Key]; the first
// position seen for a key is the one stored on the node.
//
// The result satisfies |nodes| = distinct quantized endpoints and
// |edges| = non-degenerate segments.
func Assemble(segments [][]river.Line, opts AssembleOptions) (*Graph, error) {
	length, err := lengthFunc(opts.LengthMethod)
	if err != nil {
		return nil, err
	}
	id := opts.StartEdgeID
	if id == 0 {
		id = DefaultStartEdgeID
	}

	g := New(opts.Meta)
	for _, line := range segments {
		for _, s := range line {
			if geom.Degenerate(s.Coords) {
				continue
			}
			from, err := g.ensureNode(s.Start())
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", id, err)
			}
			to, err := g.ensureNode(s.End())
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", id, err)
			}
			if err := g.AddEdge(Edge{
				ID:       id,
				From:     from,
				To:       to,
				Name:     s.Name,
				LengthKm: length(s.Coords),
				Geometry: s.Coords,
				Type:     EdgeFlow,
			}); err != nil {
				return nil, fmt.Errorf("edge %d: %w", id, err)
			}
			id++
		}
	}
	return g, nil
}

// ensureNode returns the ID of the node at p's key, adding it first if
// needed. A non-finite p has no key and yields ErrInvalidNodeID.
func (g *Graph) ensureNode(p orb.Point) (string, error) {
	if !finite(p[0]) || !finite(p[1]) {
		return "", fmt.Errorf("%w: endpoint %v is not finite", ErrInvalidNodeID, p)
	}
	key := KeyOf(p)
	id := key.ID()
	if _, ok := g.nodes[id]; ok {
		return id, nil
	}
	if err := g.AddNode(Node{ID: id, Key: key, Lon: p[0], Lat: p[1]}); err != nil {
		return "", err
	}
	return id, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func lengthFunc(m LengthMethod) (func(orb.LineString) float64, error) {
	switch m {
	case "", LengthPlanar:
		return PlanarLengthKm, nil
	case LengthHaversine:
		return HaversineLengthKm, nil
	}
	return nil, fmt.Errorf("unknown length method %q", m)
}

// PlanarLengthKm returns the planar length of ls in degrees times 111 km.
func PlanarLengthKm(ls orb.LineString) float64 {
	return geom.Length(ls) * geom.KmPerDegree
}

// HaversineLengthKm returns the great-circle length of ls in kilometers.
func HaversineLengthKm(ls orb.LineString) float64 {
	return geo.LengthHaversine(ls) / 1000
}
