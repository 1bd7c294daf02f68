package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Epsilon is the floating slack, in degrees, under which two coordinates are
// considered the same point. It is far below any snap tolerance and only
// absorbs rounding in intersection and projection arithmetic.
const Epsilon = 1e-9

// KmPerDegree converts planar lengths in degrees to kilometers using the
// meridian approximation of 111 km per degree.
const KmPerDegree = 111.0

// Length returns the planar length of ls in coordinate units (degrees).
func Length(ls orb.LineString) float64 {
	return planar.Length(ls)
}

// Degenerate reports whether ls has fewer than two distinct vertices.
func Degenerate(ls orb.LineString) bool {
	if len(ls) < 2 {
		return true
	}
	for _, p := range ls[1:] {
		if p != ls[0] {
			return false
		}
	}
	return true
}

// Near reports whether a and b are within Epsilon of each other.
func Near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) <= Epsilon && math.Abs(a[1]-b[1]) <= Epsilon
}

// ClosestPoint returns the point on ls closest to p, the planar distance
// between them, and the distance along ls at which the point lies.
// For an empty line it returns p, +Inf and 0.
func ClosestPoint(ls orb.LineString, p orb.Point) (orb.Point, float64, float64) {
	switch len(ls) {
	case 0:
		return p, math.Inf(1), 0
	case 1:
		return ls[0], planar.Distance(ls[0], p), 0
	}

	best := ls[0]
	bestDist := math.Inf(1)
	bestAlong := 0.0
	walked := 0.0
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		q, t := projectOnSegment(a, b, p)
		segLen := planar.Distance(a, b)
		if d := planar.Distance(q, p); d < bestDist {
			best, bestDist, bestAlong = q, d, walked+t*segLen
		}
		walked += segLen
	}
	return best, bestDist, bestAlong
}

// DistanceToSegment returns the planar distance from p to the segment a-b.
func DistanceToSegment(a, b, p orb.Point) float64 {
	q, _ := projectOnSegment(a, b, p)
	return planar.Distance(q, p)
}

// projectOnSegment returns the point of segment a-b closest to p and its
// parameter t in [0, 1]. The endpoints are returned exactly when t clamps.
func projectOnSegment(a, b, p orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, 0
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	switch {
	case t <= 0:
		return a, 0
	case t >= 1:
		return b, 1
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}, t
}

// Cut splits ls at the given distances along it and returns the pieces in
// order. Distances must be ascending; those outside the open interval
// (0, Length(ls)) are ignored. Consecutive pieces share the cut vertex
// exactly, and a cut within Epsilon of an existing vertex reuses that vertex,
// so concatenating the pieces (dropping each repeated joint) yields the
// original vertices plus the cut points.
func Cut(ls orb.LineString, dists []float64) []orb.LineString {
	if len(ls) < 2 {
		return []orb.LineString{ls}
	}

	total := Length(ls)
	var pieces []orb.LineString
	current := orb.LineString{ls[0]}
	walked := 0.0
	next := 0
	for next < len(dists) && dists[next] <= Epsilon {
		next++
	}

	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		segLen := planar.Distance(a, b)
		for next < len(dists) && dists[next] < total-Epsilon && dists[next] < walked+segLen-Epsilon {
			t := (dists[next] - walked) / segLen
			cut := lerp(a, b, t)
			if Near(cut, current[len(current)-1]) {
				cut = current[len(current)-1]
			} else {
				current = append(current, cut)
			}
			pieces = append(pieces, current)
			current = orb.LineString{cut}
			next++
		}
		current = append(current, b)
		walked += segLen

		// A cut landing on vertex b reuses it.
		if next < len(dists) && math.Abs(dists[next]-walked) <= Epsilon && i < len(ls)-1 {
			pieces = append(pieces, current)
			current = orb.LineString{b}
			next++
		}
	}
	pieces = append(pieces, current)

	// Drop empty pieces produced by duplicate cut distances.
	out := pieces[:0]
	for _, p := range pieces {
		if !Degenerate(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []orb.LineString{ls}
	}
	return out
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}
