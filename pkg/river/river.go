// Package river defines the channel geometry types passed between the stages
// of the river network pipeline.
//
// A [Feature] is what the loader reads: a named geometry that may be
// multi-part or missing. A [Line] is a single-part polyline descended from a
// feature. Stages never modify a Line in place; they return new slices.
package river

import (
	"github.com/paulmach/orb"
)

// NoFeature marks a Line whose source feature is not known, as produced by
// the planarizer before attribute recovery.
const NoFeature = -1

// Feature is a named channel geometry as loaded from input.
// Geometry is an orb.LineString, an orb.MultiLineString, or nil.
type Feature struct {
	Name     string
	Geometry orb.Geometry
}

// Line is a single-part channel polyline.
type Line struct {
	Name    string         // Channel name, empty until recovered after planarization
	Coords  orb.LineString // Vertices in flow order, at least two
	Feature int            // Index of the source Feature, or NoFeature
}

// Valid reports whether the line has at least two vertices.
func (l Line) Valid() bool { return len(l.Coords) >= 2 }

// Start returns the first vertex of the line.
func (l Line) Start() orb.Point { return l.Coords[0] }

// End returns the last vertex of the line.
func (l Line) End() orb.Point { return l.Coords[len(l.Coords)-1] }

// Clone returns a copy of the line with its own coordinate slice.
func (l Line) Clone() Line {
	l.Coords = append(orb.LineString(nil), l.Coords...)
	return l
}
