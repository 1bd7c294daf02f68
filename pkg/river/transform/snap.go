package transform

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
	"github.com/matzehuels/rivergraph/pkg/river/index"
)

// SnapOptions configures [Snap].
type SnapOptions struct {
	// Tolerance is the search radius in degrees. An endpoint snaps only
	// when its distance to another line is strictly less than Tolerance.
	Tolerance float64

	// Workers bounds the number of lines processed concurrently.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Workers int
}

// SnapStats counts the outcome for each input line.
type SnapStats struct {
	Snapped   int // Endpoint moved onto another line
	Unsnapped int // No other line within tolerance
	Skipped   int // Fewer than two vertices, passed through unchanged
}

// SnapResult holds the snapped lines, one per input line in input order.
type SnapResult struct {
	Lines []river.Line
	Stats SnapStats
}

type snapOutcome int

const (
	outcomeUnsnapped snapOutcome = iota
	outcomeSnapped
	outcomeSkipped
)

// Snap moves the last vertex of each line onto the nearest other line when
// that line is closer than the tolerance. The vertex is replaced by its
// projection onto the target, so the tributary ends exactly on the channel it
// joins. Only the downstream end is considered, since vertex order is flow
// order.
//
// Candidate distances are always measured against the unsnapped input, and
// equal distances resolve to the lowest line index, so the result does not
// depend on worker scheduling. Snap returns early with the context error if
// ctx is cancelled.
func Snap(ctx context.Context, lines []river.Line, opts SnapOptions) (*SnapResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	idx := index.Build(lines)
	out := make([]river.Line, len(lines))
	outcomes := make([]snapOutcome, len(lines))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], outcomes[i] = snapLine(lines, idx, i, opts.Tolerance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SnapResult{Lines: out}
	for _, o := range outcomes {
		switch o {
		case outcomeSnapped:
			res.Stats.Snapped++
		case outcomeSkipped:
			res.Stats.Skipped++
		default:
			res.Stats.Unsnapped++
		}
	}
	return res, nil
}

func snapLine(lines []river.Line, idx *index.Index, i int, tol float64) (river.Line, snapOutcome) {
	l := lines[i]
	if !l.Valid() {
		return l, outcomeSkipped
	}

	end := l.End()
	target := -1
	nearest := tol
	for _, j := range idx.QueryPoint(end, tol) {
		if j == i {
			continue
		}
		if _, d, _ := geom.ClosestPoint(lines[j].Coords, end); d < nearest {
			nearest, target = d, j
		}
	}
	if target < 0 {
		return l, outcomeUnsnapped
	}

	q, _, _ := geom.ClosestPoint(lines[target].Coords, end)
	snapped := l.Clone()
	snapped.Coords[len(snapped.Coords)-1] = q
	return snapped, outcomeSnapped
}
