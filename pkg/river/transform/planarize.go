package transform

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
	"github.com/matzehuels/rivergraph/pkg/river/index"
)

// Planarize nodes the lines and re-joins the pieces into maximal chains.
//
// Every segment is split wherever it crosses, touches or overlaps another
// segment, so lines only meet at shared vertices afterwards. Overlapping
// stretches are kept once, in the direction they were first seen. Pieces are
// then chained through every point with exactly one incoming and one
// outgoing piece; any point where three or more pieces meet, or where
// directions disagree, ends a chain. Lines are returned with empty names and
// Feature set to river.NoFeature, since a chain may span several inputs.
//
// Input vertices and intersection points within geom.Epsilon of an earlier
// point are replaced by it, so lines that touch stay connected exactly.
func Planarize(lines []river.Line) []river.Line {
	reg := newPointRegistry()
	var segs []segment
	for _, l := range lines {
		var prev orb.Point
		for i, p := range l.Coords {
			p = reg.canon(p)
			if i > 0 && p != prev {
				segs = append(segs, segment{a: prev, b: p})
			}
			prev = p
		}
	}

	splits := nodeSegments(segs, reg)
	pieces := splitSegments(segs, splits)
	return mergePieces(pieces)
}

type segment struct {
	a, b orb.Point
}

func (s segment) bound() orb.Bound {
	return orb.LineString{s.a, s.b}.Bound().Pad(geom.Epsilon)
}

// nodeSegments finds every shared point between segment pairs and returns the
// canonical split points for each segment.
func nodeSegments(segs []segment, reg *pointRegistry) [][]orb.Point {
	bounds := make([]orb.Bound, len(segs))
	for i, s := range segs {
		bounds[i] = s.bound()
	}
	idx := index.BuildBounds(bounds)

	splits := make([][]orb.Point, len(segs))
	for i, s := range segs {
		for _, j := range idx.Query(bounds[i]) {
			if j <= i {
				continue
			}
			t := segs[j]
			for _, p := range geom.IntersectSegments(s.a, s.b, t.a, t.b) {
				p = reg.canon(p)
				splits[i] = append(splits[i], p)
				splits[j] = append(splits[j], p)
			}
		}
	}
	return splits
}

// splitSegments cuts each segment at its split points and drops sub-segments
// already produced in either direction.
func splitSegments(segs []segment, splits [][]orb.Point) []segment {
	seen := make(map[segment]bool)
	var pieces []segment
	for i, s := range segs {
		pts := []orb.Point{s.a, s.b}
		for _, p := range splits[i] {
			if p != s.a && p != s.b {
				pts = append(pts, p)
			}
		}
		slices.SortStableFunc(pts, func(x, y orb.Point) int {
			return cmp.Compare(geom.SegmentParam(s.a, s.b, x), geom.SegmentParam(s.a, s.b, y))
		})
		pts = slices.Compact(pts)

		for k := 1; k < len(pts); k++ {
			piece := segment{a: pts[k-1], b: pts[k]}
			if piece.a == piece.b {
				continue
			}
			key := undirected(piece)
			if seen[key] {
				continue
			}
			seen[key] = true
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

func undirected(s segment) segment {
	if s.b[0] < s.a[0] || (s.b[0] == s.a[0] && s.b[1] < s.a[1]) {
		return segment{a: s.b, b: s.a}
	}
	return s
}

// mergePieces joins pieces into maximal directed chains.
func mergePieces(pieces []segment) []river.Line {
	out := make(map[orb.Point][]int)
	in := make(map[orb.Point]int)
	for i, p := range pieces {
		out[p.a] = append(out[p.a], i)
		in[p.b]++
	}
	passThrough := func(p orb.Point) bool {
		return in[p] == 1 && len(out[p]) == 1
	}

	used := make([]bool, len(pieces))
	var lines []river.Line
	follow := func(start int) {
		coords := orb.LineString{pieces[start].a}
		for i := start; !used[i]; {
			used[i] = true
			end := pieces[i].b
			coords = append(coords, end)
			if !passThrough(end) {
				break
			}
			i = out[end][0]
		}
		if !geom.Degenerate(coords) {
			lines = append(lines, river.Line{Coords: coords, Feature: river.NoFeature})
		}
	}

	for i, p := range pieces {
		if !used[i] && !passThrough(p.a) {
			follow(i)
		}
	}
	// Whatever remains forms closed loops of pass-through points.
	for i := range pieces {
		if !used[i] {
			follow(i)
		}
	}
	return lines
}

// pointRegistry canonicalizes points: a point within geom.Epsilon of a
// registered point is replaced by it, otherwise it is registered.
type pointRegistry struct {
	tree  rtree.RTreeG[orb.Point]
	exact map[orb.Point]bool
}

func newPointRegistry() *pointRegistry {
	return &pointRegistry{exact: make(map[orb.Point]bool)}
}

func (r *pointRegistry) add(p orb.Point) {
	if r.exact[p] {
		return
	}
	r.exact[p] = true
	r.tree.Insert(p, p, p)
}

func (r *pointRegistry) canon(p orb.Point) orb.Point {
	if r.exact[p] {
		return p
	}
	best, found := p, false
	lo := orb.Point{p[0] - geom.Epsilon, p[1] - geom.Epsilon}
	hi := orb.Point{p[0] + geom.Epsilon, p[1] + geom.Epsilon}
	r.tree.Search(lo, hi, func(_, _ [2]float64, q orb.Point) bool {
		if !found || closer(p, q, best) {
			best, found = q, true
		}
		return true
	})
	if found {
		return best
	}
	r.add(p)
	return p
}

// closer reports whether q is nearer to p than best, breaking ties by
// coordinate order.
func closer(p, q, best orb.Point) bool {
	dq := sqDist(p, q)
	db := sqDist(p, best)
	if dq != db {
		return dq < db
	}
	return q[0] < best[0] || (q[0] == best[0] && q[1] < best[1])
}

func sqDist(a, b orb.Point) float64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	return dx*dx + dy*dy
}
