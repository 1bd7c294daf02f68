package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/metrics"
	"github.com/matzehuels/rivergraph/pkg/observability"
	"github.com/matzehuels/rivergraph/pkg/pipeline"
)

// defaultOutputDir is where build writes its files.
const defaultOutputDir = "."

// buildFlags holds the command-line flags for the build command.
// Pipeline options are applied only when the flag was set, so values from
// --config survive unless overridden.
type buildFlags struct {
	output      string
	config      string
	nameField   string
	defaultName string
	tolerance   float64
	segmentKm   float64
	startID     int64
	workers     int
	dissolve    bool
	filter      string
	length      string
	proximityKm float64
	sinks       []string
	refresh     bool
	noCache     bool
	cacheURL    string
	metricsFile string
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [input.geojson]",
		Short: "Build a river network from GeoJSON polylines",
		Long: `Build reads LineString and MultiLineString features, snaps dangling
endpoints onto nearby channels, splits lines at every crossing, cuts channels
into near-equal segments and writes the network to:

  nodes.csv         node_id, lon, lat
  edges.csv         edge_id, from/to node, river_name, length_km, WKT, edge_type
  graph.json        full graph for render, inspect and serve
  segments.geojson  one LineString feature per edge

The input may also come from the "input" key of a --config file.`,
		Example: `  rivergraph build rivers.geojson -o out
  rivergraph build rivers.geojson --segment-km 10 --dissolve --filter Rhine,Main
  rivergraph build --config rivergraph.toml --sink postgres://localhost/rivers`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, args)
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", defaultOutputDir, "output directory")
	f.StringVarP(&flags.config, "config", "c", "", "config file (.toml, .yaml)")
	f.StringVar(&flags.nameField, "name-field", pipeline.DefaultNameField, "GeoJSON property holding the channel name")
	f.StringVar(&flags.defaultName, "default-name", pipeline.DefaultName, "name for channels without one")
	f.Float64Var(&flags.tolerance, "tolerance", pipeline.DefaultSnapTolerance, "endpoint snap tolerance in degrees")
	f.Float64Var(&flags.segmentKm, "segment-km", pipeline.DefaultSegmentLengthKm, "target segment length in km")
	f.Int64Var(&flags.startID, "start-id", 1, "first edge ID")
	f.IntVar(&flags.workers, "workers", 0, "parallel workers (default GOMAXPROCS)")
	f.BoolVar(&flags.dissolve, "dissolve", false, "merge features with the same name before exploding")
	f.StringVar(&flags.filter, "filter", "", "comma-separated name substrings to keep (case-insensitive)")
	f.StringVar(&flags.length, "length", pipeline.DefaultLengthMethod, "edge length method: planar or haversine")
	f.Float64Var(&flags.proximityKm, "proximity-km", 0, "link nodes closer than this radius (0 disables)")
	f.StringArrayVar(&flags.sinks, "sink", nil, "also write to a database (postgres://, mongodb://), repeatable")
	f.BoolVar(&flags.refresh, "refresh", false, "rebuild even when the network is cached")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.StringVar(&flags.cacheURL, "cache-url", "", "use a Redis cache (redis://host:6379/0) instead of the local one")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	return cmd
}

// options merges the config file, positional input and changed flags.
func (bf *buildFlags) options(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	var opts pipeline.Options
	if bf.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(bf.config); err != nil {
			return opts, err
		}
	}
	if len(args) > 0 {
		opts.Input = args[0]
	}
	if opts.Input == "" {
		return opts, errors.New(errors.ErrCodeInvalidInput, "no input: pass a GeoJSON file or set input in --config")
	}

	fs := cmd.Flags()
	if fs.Changed("name-field") {
		opts.NameField = bf.nameField
	}
	if fs.Changed("default-name") {
		opts.DefaultName = bf.defaultName
	}
	if fs.Changed("tolerance") {
		opts.SnapTolerance = bf.tolerance
	}
	if fs.Changed("segment-km") {
		opts.SegmentLengthKm = bf.segmentKm
	}
	if fs.Changed("start-id") {
		opts.StartEdgeID = bf.startID
	}
	if fs.Changed("workers") {
		opts.Workers = bf.workers
	}
	if fs.Changed("dissolve") {
		opts.Dissolve = bf.dissolve
	}
	if fs.Changed("filter") {
		opts.Filter = splitList(bf.filter)
	}
	if fs.Changed("length") {
		opts.LengthMethod = bf.length
	}
	if fs.Changed("proximity-km") {
		opts.ProximityRadiusKm = bf.proximityKm
	}
	if fs.Changed("refresh") {
		opts.Refresh = bf.refresh
	}
	opts.Sinks = append(opts.Sinks, bf.sinks...)
	return opts, nil
}

func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, flags buildFlags) error {
	logger := loggerFromContext(ctx)

	reg := metrics.NewRegistry()
	reg.Install()
	defer observability.Reset()

	runner, err := c.newRunner(ctx, flags.noCache, flags.cacheURL)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Verbose runs log every stage; otherwise a spinner shows progress and
	// the pipeline only reports warnings.
	var spinner *Spinner
	opts.Logger = logger
	if logger.GetLevel() > log.DebugLevel {
		spinner = newSpinnerWithContext(ctx, "Loading "+filepath.Base(opts.Input))
		quiet := logger.With()
		quiet.SetLevel(log.WarnLevel)
		opts.Logger = quiet
		observability.SetPipelineHooks(stageReporter{PipelineHooks: observability.Pipeline(), spinner: spinner})
		spinner.Start()
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Build failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	prog.done("built network", "run_id", result.RunID, "cached", result.CacheHit)

	paths, err := io.ExportAll(result.Graph, flags.output)
	if err != nil {
		return err
	}

	printSuccess("Built network from %s", opts.Input)
	printStats(result.Graph.NodeCount(), result.Graph.EdgeCount(), result.CacheHit)
	if !result.CacheHit {
		printBuildStats(result.Stats)
	}
	for _, p := range paths {
		printFile(p)
	}
	if len(opts.Sinks) > 0 {
		printDetail("wrote run %s to %d sink(s)", result.RunID, len(opts.Sinks))
	}

	if flags.metricsFile != "" {
		if err := reg.WriteTextfile(flags.metricsFile); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "write metrics")
		}
		printFile(flags.metricsFile)
	}

	fmt.Fprintln(stdout)
	printNextStep("Render it", fmt.Sprintf("%s render %s", appName, filepath.Join(flags.output, io.GraphFile)))
	return nil
}

// printBuildStats prints the per-stage table and repair counters.
func printBuildStats(s pipeline.Stats) {
	if s.Load.Unsupported > 0 || s.Load.NullGeom > 0 {
		printWarning("skipped %d non-line and %d empty features", s.Load.Unsupported, s.Load.NullGeom)
	}
	printDetail("snapped %d endpoints, %d left dangling", s.Snap.Snapped, s.Snap.Unsnapped)

	rows := make([][]string, 0, len(s.Stages))
	for _, st := range s.Stages {
		rows = append(rows, []string{st.Name, fmt.Sprint(st.Items), st.Duration.Round(time.Microsecond).String()})
	}
	printTable([]string{"STAGE", "ITEMS", "TIME"}, rows)
}

// stageMessages are the spinner captions for each pipeline stage.
var stageMessages = map[string]string{
	pipeline.StageLoad:      "Loading features",
	pipeline.StageFilter:    "Filtering channels",
	pipeline.StageDissolve:  "Dissolving by name",
	pipeline.StageExplode:   "Exploding multi-part lines",
	pipeline.StageSnap:      "Snapping endpoints",
	pipeline.StagePlanarize: "Splitting at intersections",
	pipeline.StageRecover:   "Recovering channel names",
	pipeline.StageSegment:   "Cutting segments",
	pipeline.StageAssemble:  "Assembling graph",
	pipeline.StageProximity: "Linking nearby nodes",
	pipeline.StageSink:      "Writing to sinks",
}

// stageReporter shows the running stage on a spinner and forwards every
// event to the wrapped hooks.
type stageReporter struct {
	observability.PipelineHooks
	spinner *Spinner
}

func (r stageReporter) OnStageStart(ctx context.Context, stage string) {
	if msg, ok := stageMessages[stage]; ok {
		r.spinner.Update(msg)
	}
	r.PipelineHooks.OnStageStart(ctx, stage)
}
