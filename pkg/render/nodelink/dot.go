package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/render"
)

// DefaultScale is the default drawing scale in inches per degree.
const DefaultScale = 2.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed labels nodes with their IDs and edges with name and length.
	// When false, nodes are unlabeled points and edges carry no label.
	Detailed bool

	// Scale is inches per degree. Zero means DefaultScale.
	Scale float64

	// HideProximity omits proximity edges from the diagram.
	HideProximity bool
}

// ToDOT converts a river network to Graphviz DOT with pinned node positions.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(g *network.Graph, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	heads := idSet(g.Sources())
	outlets := idSet(g.Sinks())

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=steelblue, color=steelblue, width=0.06, height=0.06, fixedsize=true, fontsize=8];\n")
	buf.WriteString("  edge [color=steelblue, penwidth=1.5, arrowsize=0.4, fontsize=7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", coord(n.Lon*scale), coord(n.Lat*scale)),
			"label=\"\"",
		}
		switch {
		case heads[n.ID]:
			attrs = append(attrs, "fillcolor=seagreen", "color=seagreen")
		case outlets[n.ID]:
			attrs = append(attrs, "fillcolor=firebrick", "color=firebrick")
		}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.ID))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.HideProximity && e.Type == network.EdgeProximity {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e network.Edge, detailed bool) []string {
	attrs := []string{fmt.Sprintf("id=\"e%d\"", e.ID)}
	switch e.Type {
	case network.EdgeProximity:
		attrs = append(attrs, "style=dashed", "color=grey", "arrowhead=none", "penwidth=0.5")
	case network.EdgeCorrelation:
		attrs = append(attrs, "style=dotted", "color=darkorange", "penwidth=0.8")
	}
	if detailed && e.Type == network.EdgeFlow {
		attrs = append(attrs, fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%.1f km", e.Name, e.LengthKm)))
	}
	return attrs
}

func idSet(nodes []*network.Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine, which
// keeps the pinned node positions.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-size svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
