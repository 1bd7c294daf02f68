package network

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/matzehuels/rivergraph/pkg/river/index"
)

// SpatialLinkName is the Name carried by proximity edges.
const SpatialLinkName = "Spatial_Link"

// AddProximityEdges links every pair of nodes closer than radiusKm
// (great-circle distance) that no flow edge already joins in either
// direction. Each pair gets two edges, one per direction, with a straight
// two-point geometry and the pair distance as length. Pairs are visited in
// node insertion order and IDs continue after the largest existing edge ID.
//
// It returns the number of edges added. A non-positive radius adds nothing.
func AddProximityEdges(g *Graph, radiusKm float64) (int, error) {
	if radiusKm <= 0 {
		return 0, nil
	}

	nodes := g.Nodes()
	bounds := make([]orb.Bound, len(nodes))
	for i, n := range nodes {
		bounds[i] = n.Point().Bound()
	}
	idx := index.BuildBounds(bounds)

	next := g.MaxEdgeID() + 1
	added := 0
	for i, a := range nodes {
		pa := a.Point()
		for _, j := range idx.Query(geo.NewBoundAroundPoint(pa, radiusKm*1000)) {
			if j <= i {
				continue
			}
			b := nodes[j]
			pb := b.Point()
			d := geo.DistanceHaversine(pa, pb) / 1000
			if d >= radiusKm || g.Linked(a.ID, b.ID, EdgeFlow) || g.Linked(b.ID, a.ID, EdgeFlow) {
				continue
			}
			for _, e := range []Edge{
				{ID: next, From: a.ID, To: b.ID, Geometry: orb.LineString{pa, pb}},
				{ID: next + 1, From: b.ID, To: a.ID, Geometry: orb.LineString{pb, pa}},
			} {
				e.Name, e.LengthKm, e.Type = SpatialLinkName, d, EdgeProximity
				if err := g.AddEdge(e); err != nil {
					return added, fmt.Errorf("proximity edge %d: %w", e.ID, err)
				}
				added++
			}
			next += 2
		}
	}
	return added, nil
}
