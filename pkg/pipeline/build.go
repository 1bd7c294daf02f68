package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/observability"
	"github.com/matzehuels/rivergraph/pkg/river"
	"github.com/matzehuels/rivergraph/pkg/river/transform"
)

// Build runs every stage after loading on features already in memory.
// Defaults are applied to opts; Input, Data and Sinks are ignored.
func Build(ctx context.Context, features []river.Feature, opts Options) (*network.Graph, Stats, error) {
	opts.SetDefaults()
	var stats Stats
	if err := validate.Struct(&opts); err != nil {
		return nil, stats, formatValidationError(err)
	}
	start := time.Now()
	b := &builder{opts: opts, logger: opts.Logger, stats: &stats}
	g, err := b.run(ctx, features)
	stats.Duration = time.Since(start)
	return g, stats, err
}

type builder struct {
	opts   Options
	logger *log.Logger
	stats  *Stats
}

// stage runs fn as a named pipeline stage. fn returns the number of items
// the stage produced.
func (b *builder) stage(ctx context.Context, name string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	n, err := fn()
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, name, n, elapsed, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	b.stats.Stages = append(b.stats.Stages, StageStat{Name: name, Items: n, Duration: elapsed})
	b.logger.Debug("stage complete", "stage", name, "items", n, "duration", elapsed)
	return nil
}

func (b *builder) run(ctx context.Context, features []river.Feature) (*network.Graph, error) {
	opts := b.opts

	if len(opts.Filter) > 0 {
		if err := b.stage(ctx, StageFilter, func() (int, error) {
			features = transform.Filter(features, opts.Filter)
			return len(features), nil
		}); err != nil {
			return nil, err
		}
	}
	if opts.Dissolve {
		if err := b.stage(ctx, StageDissolve, func() (int, error) {
			features = transform.Dissolve(features)
			return len(features), nil
		}); err != nil {
			return nil, err
		}
	}
	b.stats.Features = len(features)

	var lines []river.Line
	if err := b.stage(ctx, StageExplode, func() (int, error) {
		lines = transform.Explode(features)
		return len(lines), nil
	}); err != nil {
		return nil, err
	}
	b.stats.Lines = len(lines)

	var snapped []river.Line
	if err := b.stage(ctx, StageSnap, func() (int, error) {
		res, err := transform.Snap(ctx, lines, transform.SnapOptions{
			Tolerance: opts.SnapTolerance,
			Workers:   opts.Workers,
		})
		if err != nil {
			return 0, err
		}
		snapped, b.stats.Snap = res.Lines, res.Stats
		return res.Stats.Snapped, nil
	}); err != nil {
		return nil, err
	}
	b.logger.Info("snapped endpoints",
		"snapped", b.stats.Snap.Snapped,
		"unsnapped", b.stats.Snap.Unsnapped,
		"skipped", b.stats.Snap.Skipped)

	var planar []river.Line
	if err := b.stage(ctx, StagePlanarize, func() (int, error) {
		planar = transform.Planarize(snapped)
		return len(planar), nil
	}); err != nil {
		return nil, err
	}
	b.stats.PlanarLines = len(planar)

	if err := b.stage(ctx, StageRecover, func() (int, error) {
		planar = transform.RecoverNames(planar, snapped, opts.DefaultName)
		unnamed := 0
		for _, l := range planar {
			if l.Feature == river.NoFeature {
				unnamed++
			}
		}
		if unnamed > 0 {
			b.logger.Warn("channels without a source feature", "count", unnamed, "name", opts.DefaultName)
		}
		return len(planar), nil
	}); err != nil {
		return nil, err
	}

	var segments [][]river.Line
	if err := b.stage(ctx, StageSegment, func() (int, error) {
		var err error
		segments, err = transform.SegmentAll(ctx, planar, opts.SegmentLengthKm, opts.Workers)
		n := 0
		for _, s := range segments {
			n += len(s)
		}
		b.stats.Segments = n
		return n, err
	}); err != nil {
		return nil, err
	}

	var g *network.Graph
	if err := b.stage(ctx, StageAssemble, func() (int, error) {
		var err error
		g, err = network.Assemble(segments, network.AssembleOptions{
			StartEdgeID:  opts.StartEdgeID,
			LengthMethod: network.LengthMethod(opts.LengthMethod),
			Meta:         metadata(opts),
		})
		if err != nil {
			return 0, err
		}
		return g.EdgeCount(), nil
	}); err != nil {
		return nil, err
	}
	b.stats.FlowEdges = g.EdgeCount()

	if opts.ProximityRadiusKm > 0 {
		if err := b.stage(ctx, StageProximity, func() (int, error) {
			n, err := network.AddProximityEdges(g, opts.ProximityRadiusKm)
			b.stats.ProximityEdges = n
			return n, err
		}); err != nil {
			return nil, err
		}
	}
	b.stats.Nodes = g.NodeCount()

	b.logger.Info("assembled network",
		"nodes", g.NodeCount(),
		"flow_edges", b.stats.FlowEdges,
		"proximity_edges", b.stats.ProximityEdges)
	return g, nil
}

// metadata records the options a graph was built with.
func metadata(opts Options) network.Metadata {
	m := network.Metadata{
		"snap_tolerance":    opts.SnapTolerance,
		"segment_length_km": opts.SegmentLengthKm,
		"start_edge_id":     opts.StartEdgeID,
		"length_method":     opts.LengthMethod,
	}
	if opts.ProximityRadiusKm > 0 {
		m["proximity_radius_km"] = opts.ProximityRadiusKm
	}
	return m
}
