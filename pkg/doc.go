// Package pkg provides the core libraries for rivergraph.
//
// # Overview
//
// rivergraph turns raw river centerlines into a topologically valid,
// uniformly segmented directed graph. The pkg directory is organized into
// four areas:
//
//  1. Domain logic: [geom], [river], [river/transform], [river/index], [network]
//  2. Orchestration: [pipeline]
//  3. Infrastructure: [cache], [store], [io], [metrics], [observability]
//  4. Integrations and output: [integrations], [render]
//
// # Architecture
//
// The data flow through a build:
//
//	GeoJSON features
//	         ↓
//	    [io] package (decode, name features)
//	         ↓
//	    [river/transform] package (decompose, snap, planarize, segment)
//	         ↓
//	    [network] package (assemble nodes and edges)
//	         ↓
//	    nodes.csv, edges.csv, graph.json, segments.geojson
//
// # Quick Start
//
// Build a network from a GeoJSON file:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/rivergraph/pkg/cache"
//	    "github.com/matzehuels/rivergraph/pkg/io"
//	    "github.com/matzehuels/rivergraph/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Input:           "rivers.geojson",
//	    SegmentLengthKm: 30,
//	})
//	paths, err := io.ExportAll(res.Graph, "out")
//
// # Main Packages
//
// ## Domain Logic
//
// [geom] - Planar line primitives: projection, intersection, cutting and
// resampling in degree space.
//
// [river/transform] - The geometry stages. Each consumes and returns
// [river.Line] values and never touches the graph.
//
// [network] - The directed graph with deterministic node keys and edge IDs,
// plus proximity edges between nearby nodes.
//
// ## Infrastructure
//
// [cache] - File, Redis and null backends for built networks and rendered
// artifacts.
//
// [store] - Sinks that write networks to PostgreSQL and MongoDB.
//
// [metrics] - Prometheus collectors behind the [observability] hooks.
//
// ## Integrations
//
// [integrations] - Cached, retrying HTTP clients for remote data APIs, such
// as Open-Meteo terrain elevation.
//
// # Error Handling
//
// Errors carry a code from [errors]; test with errors.Is(err, code).
//
// [geom]: github.com/matzehuels/rivergraph/pkg/geom
// [river]: github.com/matzehuels/rivergraph/pkg/river
// [river/transform]: github.com/matzehuels/rivergraph/pkg/river/transform
// [river/index]: github.com/matzehuels/rivergraph/pkg/river/index
// [river.Line]: github.com/matzehuels/rivergraph/pkg/river#Line
// [network]: github.com/matzehuels/rivergraph/pkg/network
// [pipeline]: github.com/matzehuels/rivergraph/pkg/pipeline
// [cache]: github.com/matzehuels/rivergraph/pkg/cache
// [store]: github.com/matzehuels/rivergraph/pkg/store
// [io]: github.com/matzehuels/rivergraph/pkg/io
// [metrics]: github.com/matzehuels/rivergraph/pkg/metrics
// [observability]: github.com/matzehuels/rivergraph/pkg/observability
// [integrations]: github.com/matzehuels/rivergraph/pkg/integrations
// [render]: github.com/matzehuels/rivergraph/pkg/render
// [errors]: github.com/matzehuels/rivergraph/pkg/errors
package pkg
