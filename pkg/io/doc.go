// Package io reads river features and reads and writes river networks.
//
// # Input
//
// [ReadFeatures] and [ImportFeatures] load a GeoJSON FeatureCollection.
// LineString and MultiLineString features are kept with their channel name;
// features with a null geometry are kept with a nil geometry so later stages
// can drop them, and every other geometry type is skipped and counted in
// [LoadStats]:
//
//	features, stats, err := io.ImportFeatures("rivers.geojson", io.ReadOptions{NameField: "name_en"})
//
// # Output Formats
//
// A [network.Graph] can be written as:
//
//   - nodes.csv and edges.csv ([WriteNodesCSV], [WriteEdgesCSV]) for tabular tools
//   - graph.json ([WriteJSON]), the lossless form read back by [ReadJSON]
//   - segments.geojson ([WriteSegments]) for GIS viewers
//
// [ExportAll] writes all of them into one directory.
//
// # CSV Columns
//
// nodes.csv has the columns node_id, lon, lat. edges.csv has the columns
// edge_id, from_node_id, to_node_id, river_name, length_km, wkt, edge_type.
// The column names match what downstream dataset scripts expect, so
// river_name carries the edge name and wkt its geometry in well-known text.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the same
// graph, but not with concurrent modifications to it.
//
// [network.Graph]: github.com/matzehuels/rivergraph/pkg/network.Graph
package io
