package io

import (
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/rivergraph/pkg/network"
)

// WriteSegments writes the edges that carry geometry as a GeoJSON
// FeatureCollection of LineStrings, with the edge attributes as properties.
func WriteSegments(g *network.Graph, w io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, e := range g.Edges() {
		if len(e.Geometry) == 0 {
			continue
		}
		f := geojson.NewFeature(e.Geometry)
		f.Properties["edge_id"] = e.ID
		f.Properties["from_node_id"] = e.From
		f.Properties["to_node_id"] = e.To
		f.Properties["river_name"] = e.Name
		f.Properties["length_km"] = e.LengthKm
		f.Properties["edge_type"] = int(e.Type)
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
