package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/rivergraph/pkg/cache"
	"github.com/matzehuels/rivergraph/pkg/errors"
	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/observability"
	"github.com/matzehuels/rivergraph/pkg/render/nodelink"
)

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// DefaultPNGScale is the PNG resolution multiplier.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// RenderOptions configures node-link rendering.
type RenderOptions struct {
	Formats       []string `json:"formats,omitempty"`
	Detailed      bool     `json:"detailed,omitempty"`
	Scale         float64  `json:"scale,omitempty"` // PNG resolution multiplier
	HideProximity bool     `json:"hide_proximity,omitempty"`
}

// SetDefaults renders SVG when no format is set.
func (o *RenderOptions) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultPNGScale
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *RenderOptions) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:        format,
		Detailed:      o.Detailed,
		Scale:         o.Scale,
		HideProximity: o.HideProximity,
	}
}

// Render generates artifacts in the requested formats.
func Render(ctx context.Context, g *network.Graph, opts RenderOptions) (map[string][]byte, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, HideProximity: opts.HideProximity})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo renders with caching and reports whether every format
// came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *network.Graph, opts RenderOptions) (map[string][]byte, bool, error) {
	opts.SetDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := rgio.WriteJSON(withoutRunMeta(g), &buf); err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(buf.Bytes())

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	r.Logger.Debug("rendered", "formats", strings.Join(opts.Formats, ","))
	return rendered, false, nil
}

// withoutRunMeta returns a view of g whose hash doesn't change per run.
// Run-specific metadata would otherwise defeat the artifact cache.
func withoutRunMeta(g *network.Graph) *network.Graph {
	meta := g.Meta()
	if _, ok := meta[MetaRunID]; !ok {
		return g
	}
	stripped := make(network.Metadata, len(meta))
	for k, v := range meta {
		if k != MetaRunID {
			stripped[k] = v
		}
	}
	return g.Subgraph(nil, stripped)
}
