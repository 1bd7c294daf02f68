package io

import (
	"encoding/csv"
	"io"

	"github.com/matzehuels/rivergraph/pkg/network"
)

// ElevationFile is the static node feature table written by [ExportElevation].
const ElevationFile = "nodes_static_features.csv"

var elevationColumns = []string{"node_id", "lon", "lat", "elevation_m"}

// WriteElevationCSV writes one row per node that has an entry in elev, in
// graph order. Nodes without an elevation are left out.
func WriteElevationCSV(g *network.Graph, elev map[string]float64, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(elevationColumns); err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		v, ok := elev[n.ID]
		if !ok {
			continue
		}
		if err := cw.Write([]string{n.ID, formatFloat(n.Lon), formatFloat(n.Lat), formatFloat(v)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportElevation writes the elevation table to path.
func ExportElevation(g *network.Graph, elev map[string]float64, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteElevationCSV(g, elev, w) })
}
