package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output        string  // output file path (or base path for multiple outputs)
	formats       string  // comma-separated output formats
	detailed      bool    // label edges with name, ID and length
	hideProximity bool    // leave proximity edges out of the drawing
	scale         float64 // PNG resolution multiplier
	noCache       bool
	cacheURL      string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render " + networkArgs,
		Short: "Render a built network as SVG, PNG, PDF or DOT",
		Long: `Render draws a network written by build as a node-link diagram with
nodes pinned at their coordinates. SVG and DOT are rendered in-process;
PNG and PDF are converted from SVG with rsvg-convert.`,
		Example: `  rivergraph render out/graph.json
  rivergraph render out/graph.json -f svg,png --detailed -o rhine
  rivergraph render out/nodes.csv out/edges.csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (default: input name with format extension)")
	f.StringVarP(&flags.formats, "format", "f", pipeline.FormatSVG, "output formats: svg, png, pdf, dot (comma-separated)")
	f.BoolVar(&flags.detailed, "detailed", false, "label edges with name, ID and length")
	f.BoolVar(&flags.hideProximity, "hide-proximity", false, "omit proximity edges")
	f.Float64Var(&flags.scale, "scale", pipeline.DefaultPNGScale, "PNG resolution multiplier")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.StringVar(&flags.cacheURL, "cache-url", "", "use a Redis cache (redis://host:6379/0)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, flags renderFlags) error {
	ctx := cmd.Context()
	formats := parseFormats(flags.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	input := args[0]
	g, err := loadNetwork(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache, flags.cacheURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, g, pipeline.RenderOptions{
		Formats:       formats,
		Detailed:      flags.detailed,
		Scale:         flags.scale,
		HideProximity: flags.hideProximity,
	})
	if err != nil {
		return err
	}
	prog.done("rendered", "formats", strings.Join(formats, ","), "cached", cached)

	base := outputBase(input, flags.output)
	printSuccess("Rendered %s", input)
	printStats(g.NodeCount(), g.EdgeCount(), cached)
	for _, format := range formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
		}
		printFile(path)
	}
	return nil
}

// outputBase returns the output path without extension. An explicit output
// keeps its directory and drops a known format extension.
func outputBase(input, output string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}
