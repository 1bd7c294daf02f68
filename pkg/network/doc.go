// Package network provides the directed river graph and its assembly from
// segmented channel lines.
//
// # Overview
//
// A river network is a directed multigraph whose edges are channel segments
// and whose nodes are segment endpoints. Edge direction follows vertex order,
// which is taken to be flow order. Besides flow edges the graph may carry
// spatial proximity edges linking nearby nodes, distinguished by [EdgeType].
//
// # Node Identity
//
// Node identity is derived from coordinates alone. Each endpoint is quantized
// to a [Key] by scaling longitude and latitude by 10^5 and rounding, and the
// node ID is that key rendered as "<lon>_<lat>" with five decimals, for
// example "73.12345_33.54321". Endpoints closer than the quantization step
// therefore share a node, and the same input always yields the same IDs.
// The rendering works on the integers, so no float formatting is involved.
//
// # Assembly
//
// [Assemble] walks segments ordered by (line, segment) and assigns edge IDs
// sequentially from a configurable start:
//
//	g, err := network.Assemble(segments, network.AssembleOptions{StartEdgeID: 1})
//
// [AddProximityEdges] then optionally links every node pair closer than a
// radius that is not already joined by flow.
//
// # Concurrency
//
// A [Graph] is not safe for concurrent mutation. Once assembled it may be
// read from multiple goroutines.
package network
