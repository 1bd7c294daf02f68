package transform

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
)

// KmPerDegree converts segment targets in kilometers to degrees.
const KmPerDegree = geom.KmPerDegree

// Segment cuts l into the fewest pieces of equal planar length that are no
// longer than targetKm.
//
// A line no longer than the target, or a non-positive target, yields the line
// unchanged. Otherwise the line is cut into n = ceil(L/T) pieces at k*L/n
// along it. Consecutive pieces share their cut vertex exactly, the first
// piece starts at the line's first vertex and the last piece ends at its last
// vertex. Every piece keeps the line's name and feature index.
func Segment(l river.Line, targetKm float64) []river.Line {
	if targetKm <= 0 || !l.Valid() {
		return []river.Line{l}
	}
	target := targetKm / KmPerDegree
	length := geom.Length(l.Coords)
	if length <= target {
		return []river.Line{l}
	}

	n := int(math.Ceil(length / target))
	step := length / float64(n)
	cuts := make([]float64, 0, n-1)
	for k := 1; k < n; k++ {
		cuts = append(cuts, min(float64(k)*step, length))
	}

	pieces := geom.Cut(l.Coords, cuts)
	out := make([]river.Line, len(pieces))
	for i, p := range pieces {
		out[i] = river.Line{Name: l.Name, Coords: p, Feature: l.Feature}
	}
	return out
}

// SegmentAll segments every line on up to workers goroutines and returns the
// pieces grouped by input line, in input order.
func SegmentAll(ctx context.Context, lines []river.Line, targetKm float64, workers int) ([][]river.Line, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([][]river.Line, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Segment(l, targetKm)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
