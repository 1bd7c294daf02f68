package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/rivergraph/pkg/cache"
	"github.com/matzehuels/rivergraph/pkg/errors"
	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/observability"
	"github.com/matzehuels/rivergraph/pkg/store"
)

// Metadata keys set by the runner on every graph it returns.
const (
	MetaRunID     = "run_id"
	MetaInputHash = "input_hash"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it so cache keys and defaults never drift.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads the input, builds the network (or takes it from the cache)
// and writes it to every configured sink.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := r.input(opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RunID:     uuid.NewString(),
		InputHash: cache.Hash(data),
	}

	g, hit, err := r.BuildWithCacheInfo(ctx, data, result.InputHash, opts, &result.Stats)
	observability.Pipeline().OnBuildComplete(ctx, graphSize(g), edgeCount(g), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	g.Meta()[MetaRunID] = result.RunID
	g.Meta()[MetaInputHash] = result.InputHash
	result.Graph, result.CacheHit = g, hit

	if len(opts.Sinks) > 0 {
		if err := r.writeSinks(ctx, result, opts.Sinks); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Runner) input(opts Options) ([]byte, error) {
	if opts.Data != nil {
		return opts.Data, nil
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", opts.Input)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Input)
	}
	return data, nil
}

// BuildWithCacheInfo returns the network for data, from the cache when an
// entry for the same input hash and options exists. stats is filled only
// when the network is built.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, data []byte, inputHash string, opts Options, stats *Stats) (*network.Graph, bool, error) {
	key := r.Keyer.NetworkKey(inputHash, opts.NetworkKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := rgio.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, "network")
				opts.Logger.Info("using cached network", "nodes", g.NodeCount(), "edges", g.EdgeCount())
				return g, true, nil
			}
			// Undecodable entry: rebuild and overwrite.
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "network")
	}

	g, err := r.load(ctx, data, opts, stats)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := rgio.WriteJSON(g, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.NetworkTTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "network", buf.Len())
		}
	}
	return g, false, nil
}

func (r *Runner) load(ctx context.Context, data []byte, opts Options, stats *Stats) (*network.Graph, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, StageLoad)
	start := time.Now()
	features, loadStats, err := rgio.DecodeFeatures(data, rgio.ReadOptions{
		NameField:   opts.NameField,
		DefaultName: opts.DefaultName,
	})
	elapsed := time.Since(start)
	hooks.OnStageComplete(ctx, StageLoad, len(features), elapsed, err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("loaded features",
		"features", loadStats.Features,
		"null_geometry", loadStats.NullGeom,
		"unsupported", loadStats.Unsupported)

	g, buildStats, err := Build(ctx, features, opts)
	buildStats.Load = loadStats
	buildStats.Stages = append([]StageStat{{Name: StageLoad, Items: len(features), Duration: elapsed}}, buildStats.Stages...)
	buildStats.Duration += elapsed
	*stats = buildStats
	return g, err
}

func (r *Runner) writeSinks(ctx context.Context, result *Result, urls []string) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, StageSink)
	start := time.Now()

	sinks := make([]store.Sink, 0, len(urls))
	var err error
	for _, u := range urls {
		var s store.Sink
		if s, err = store.Open(ctx, u); err != nil {
			err = errors.Wrap(errors.ErrCodeStorage, err, "open sink")
			break
		}
		sinks = append(sinks, s)
	}
	if err == nil {
		err = store.WriteAll(ctx, result.RunID, result.Graph, sinks...)
	} else {
		for _, s := range sinks {
			_ = s.Close()
		}
	}
	hooks.OnStageComplete(ctx, StageSink, len(sinks), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", StageSink, err)
	}
	r.Logger.Info("wrote network to sinks", "sinks", len(sinks), "run_id", result.RunID)
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func graphSize(g *network.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

func edgeCount(g *network.Graph) int {
	if g == nil {
		return 0
	}
	return g.EdgeCount()
}
