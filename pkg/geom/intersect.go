package geom

import (
	"github.com/paulmach/orb"
)

// IntersectSegments returns the points shared by segments a1-a2 and b1-b2.
//
// The result is empty when the segments are disjoint, holds one point for a
// crossing or a touch, and holds the two overlap ends for collinear
// overlapping segments. Whenever a shared point coincides (within Epsilon)
// with an endpoint of either segment, that endpoint is returned exactly
// rather than a recomputed intersection, so touching lines meet bit-for-bit.
func IntersectSegments(a1, a2, b1, b2 orb.Point) []orb.Point {
	if !boundsOverlap(a1, a2, b1, b2) {
		return nil
	}

	var pts []orb.Point
	add := func(p orb.Point) {
		for _, q := range pts {
			if Near(p, q) {
				return
			}
		}
		pts = append(pts, p)
	}
	for _, p := range [2]orb.Point{a1, a2} {
		if DistanceToSegment(b1, b2, p) <= Epsilon {
			add(p)
		}
	}
	for _, p := range [2]orb.Point{b1, b2} {
		if DistanceToSegment(a1, a2, p) <= Epsilon {
			add(p)
		}
	}
	if len(pts) > 0 {
		return pts
	}

	rx, ry := a2[0]-a1[0], a2[1]-a1[1]
	sx, sy := b2[0]-b1[0], b2[1]-b1[1]
	denom := rx*sy - ry*sx
	if denom == 0 {
		return nil
	}
	qx, qy := b1[0]-a1[0], b1[1]-a1[1]
	t := (qx*sy - qy*sx) / denom
	u := (qx*ry - qy*rx) / denom
	if t <= 0 || t >= 1 || u <= 0 || u >= 1 {
		return nil
	}
	return []orb.Point{{a1[0] + t*rx, a1[1] + t*ry}}
}

func boundsOverlap(a1, a2, b1, b2 orb.Point) bool {
	for axis := 0; axis < 2; axis++ {
		aMin, aMax := minMax(a1[axis], a2[axis])
		bMin, bMax := minMax(b1[axis], b2[axis])
		if aMax+Epsilon < bMin || bMax+Epsilon < aMin {
			return false
		}
	}
	return true
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// SegmentParam returns the parameter t of p projected on segment a-b, where
// t = 0 at a and t = 1 at b.
func SegmentParam(a, b, p orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}
	return ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
}
