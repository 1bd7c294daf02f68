// Package pipeline runs the rivergraph build: GeoJSON features in, a river
// network out.
//
// This package is shared by every entry point (build, serve, render) so they
// apply identical defaults, caching and instrumentation.
//
// # Architecture
//
// The build consists of these stages, each reported to the observability
// hooks and logged at debug level:
//
//  1. load: decode the GeoJSON FeatureCollection
//  2. filter, dissolve: optional name filtering and per-name grouping
//  3. explode: one line per LineString part
//  4. snap: move dangling endpoints onto nearby channels
//  5. planarize: split at every intersection
//  6. recover: restore channel names lost by planarization
//  7. segment: cut channels into near-equal pieces
//  8. assemble: build nodes and flow edges
//  9. proximity: optional undirected proximity links
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:           "rivers.geojson",
//	    SegmentLengthKm: 10,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Graph.NodeCount())
//
// [Build] runs the stages on features that are already in memory and skips
// caching altogether.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	rgio "github.com/matzehuels/rivergraph/pkg/io"
	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/river/transform"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and server
// =============================================================================

const (
	// DefaultSnapTolerance is the endpoint snap radius in degrees.
	DefaultSnapTolerance = 0.05

	// DefaultSegmentLengthKm is the target segment length.
	DefaultSegmentLengthKm = 30.0

	// DefaultNameField is the GeoJSON property read for channel names.
	DefaultNameField = "name_en"

	// DefaultName labels channels without a name.
	DefaultName = "Unknown"

	// DefaultLengthMethod measures edges in planar degrees times 111 km.
	DefaultLengthMethod = string(network.LengthPlanar)
)

// Stage names reported to hooks and logs.
const (
	StageLoad      = "load"
	StageFilter    = "filter"
	StageDissolve  = "dissolve"
	StageExplode   = "explode"
	StageSnap      = "snap"
	StagePlanarize = "planarize"
	StageRecover   = "recover"
	StageSegment   = "segment"
	StageAssemble  = "assemble"
	StageProximity = "proximity"
	StageSink      = "sink"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options is the complete build configuration. It is loaded from a config
// file with [LoadConfig], overridden by CLI flags, completed with
// [Options.SetDefaults] and checked with [Options.Validate].
type Options struct {
	// Input is the GeoJSON file to read. Ignored when Data is set.
	Input string `toml:"input" yaml:"input" json:"input,omitempty"`

	// Loading
	NameField   string   `toml:"name_field" yaml:"name_field" json:"name_field,omitempty" validate:"required"`
	DefaultName string   `toml:"default_name" yaml:"default_name" json:"default_name,omitempty" validate:"required"`
	Filter      []string `toml:"filter" yaml:"filter" json:"filter,omitempty" validate:"dive,required"`
	Dissolve    bool     `toml:"dissolve" yaml:"dissolve" json:"dissolve,omitempty"`

	// Geometry
	SnapTolerance   float64 `toml:"snap_tolerance" yaml:"snap_tolerance" json:"snap_tolerance,omitempty" validate:"gt=0"`
	SegmentLengthKm float64 `toml:"segment_length_km" yaml:"segment_length_km" json:"segment_length_km,omitempty" validate:"gt=0"`
	Workers         int     `toml:"workers" yaml:"workers" json:"workers,omitempty" validate:"gte=1"`

	// Graph
	StartEdgeID       int64   `toml:"start_edge_id" yaml:"start_edge_id" json:"start_edge_id,omitempty" validate:"gte=1"`
	LengthMethod      string  `toml:"length_method" yaml:"length_method" json:"length_method,omitempty" validate:"oneof=planar haversine"`
	ProximityRadiusKm float64 `toml:"proximity_radius_km" yaml:"proximity_radius_km" json:"proximity_radius_km,omitempty" validate:"gte=0"`

	// Output
	Sinks   []string `toml:"sinks" yaml:"sinks" json:"sinks,omitempty"`
	Refresh bool     `toml:"refresh" yaml:"refresh" json:"refresh,omitempty"` // Ignore cached networks

	// Runtime options (not serialized)
	Data   []byte      `toml:"-" yaml:"-" json:"-"` // Raw GeoJSON, takes precedence over Input
	Logger *log.Logger `toml:"-" yaml:"-" json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run. It is stored in the graph metadata
	// and stamped on every sink row.
	RunID string

	// Graph is the built network.
	Graph *network.Graph

	// InputHash is the SHA-256 of the GeoJSON input.
	InputHash string

	// CacheHit reports whether Graph came from the cache.
	CacheHit bool

	// Stats contains stage counters and timings. Empty on a cache hit.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Load           rgio.LoadStats
	Features       int // After filter and dissolve
	Lines          int // After explode
	Snap           transform.SnapStats
	PlanarLines    int
	Segments       int
	Nodes          int
	FlowEdges      int
	ProximityEdges int
	Stages         []StageStat
	Duration       time.Duration
}

// StageStat is the outcome of one stage.
type StageStat struct {
	Name     string
	Items    int
	Duration time.Duration
}
