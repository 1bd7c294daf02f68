// Package nodelink renders river networks as node-link diagrams.
//
// # Overview
//
// Nodes are drawn as small points pinned to their longitude and latitude and
// edges as arrows in flow direction, so the diagram reads like a schematic
// map. Graphviz's neato engine honors the pinned positions.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use [RenderPDF] and [RenderPNG].
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: label nodes with their IDs and edges with name and length
//   - Scale: inches per degree of longitude or latitude
//   - HideProximity: omit proximity edges
//
// Channel heads are filled green and outlets red. Proximity edges are dashed
// and grey.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
