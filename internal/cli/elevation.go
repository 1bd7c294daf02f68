package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/integrations/openmeteo"
	"github.com/matzehuels/rivergraph/pkg/io"
)

// elevationFlags holds the command-line flags for the elevation command.
type elevationFlags struct {
	output    string
	baseURL   string
	batchSize int
	delay     time.Duration
	refresh   bool
	noCache   bool
	cacheURL  string
}

// elevationCommand creates the elevation command.
func (c *CLI) elevationCommand() *cobra.Command {
	var flags elevationFlags

	cmd := &cobra.Command{
		Use:   "elevation " + networkArgs,
		Short: "Look up terrain elevation for every node",
		Long: `Elevation queries the Open-Meteo elevation API for the coordinates of each
node and writes node_id, lon, lat and elevation_m to a CSV table. Responses
are cached, so repeated runs over the same network are free.`,
		Example: `  rivergraph elevation out/graph.json
  rivergraph elevation out/graph.json -o features/static.csv --refresh
  rivergraph elevation out/nodes.csv out/edges.csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runElevation(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (default: "+io.ElevationFile+" next to the input)")
	f.StringVar(&flags.baseURL, "base-url", openmeteo.DefaultBaseURL, "elevation API endpoint")
	f.IntVar(&flags.batchSize, "batch-size", openmeteo.DefaultBatchSize, "coordinates per request")
	f.DurationVar(&flags.delay, "delay", openmeteo.DefaultDelay, "pause between uncached requests")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached responses")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.StringVar(&flags.cacheURL, "cache-url", "", "use a Redis cache (redis://host:6379/0)")

	return cmd
}

func (c *CLI) runElevation(cmd *cobra.Command, args []string, flags elevationFlags) error {
	ctx := cmd.Context()
	input := args[0]
	g, err := loadNetwork(args)
	if err != nil {
		return err
	}

	backend, err := c.newCache(ctx, flags.noCache, flags.cacheURL)
	if err != nil {
		return err
	}
	defer backend.Close()

	logger := loggerFromContext(ctx)
	client := openmeteo.NewClient(backend,
		openmeteo.WithBaseURL(flags.baseURL),
		openmeteo.WithBatchSize(flags.batchSize),
		openmeteo.WithDelay(flags.delay),
		openmeteo.WithLogger(logger),
	)

	points := make([]openmeteo.Point, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		points = append(points, openmeteo.Point{ID: n.ID, Lon: n.Lon, Lat: n.Lat})
	}

	prog := newProgress(logger)
	elev, stats, err := client.Elevations(ctx, points, flags.refresh)
	if err != nil {
		return err
	}
	prog.done("fetched elevation", "points", len(elev), "batches", stats.Batches, "cached", stats.CachedBatches)
	if len(elev) == 0 && len(points) > 0 {
		return errors.New(errors.ErrCodeNotFound, "no elevation returned for %d nodes", len(points))
	}

	out := flags.output
	if out == "" {
		out = filepath.Join(filepath.Dir(input), io.ElevationFile)
	}
	if err := io.ExportElevation(g, elev, out); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", out)
	}

	printSuccess("Elevation for %d of %d nodes", len(elev), len(points))
	if stats.FailedBatches > 0 {
		printWarning("%d of %d batches failed and were skipped", stats.FailedBatches, stats.Batches)
	}
	printFile(out)
	return nil
}
