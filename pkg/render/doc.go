// Package render provides visual output for river networks.
//
// The [nodelink] subpackage draws a network as a Graphviz node-link diagram
// with nodes pinned to their geographic position. This package holds the
// format conversion shared by renderers: [ToPDF] and [ToPNG] convert SVG
// using the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/rivergraph/pkg/render/nodelink
package render
