package transform_test

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
	"github.com/matzehuels/rivergraph/pkg/river/transform"
)

func ExampleSnap() {
	// A tributary stops just short of the main stem.
	lines := []river.Line{
		{Name: "Chenab", Coords: orb.LineString{{72, 30}, {72, 31}}},
		{Name: "Jhelum", Coords: orb.LineString{{73, 30.5}, {72.02, 30.5}}},
	}

	res, _ := transform.Snap(context.Background(), lines, transform.SnapOptions{Tolerance: 0.05})
	fmt.Println("Jhelum ends at:", res.Lines[1].End())
	fmt.Println("Snapped:", res.Stats.Snapped)
	// Output:
	// Jhelum ends at: [72 30.5]
	// Snapped: 1
}

func ExamplePlanarize() {
	// The tributary now ends on the main stem, which is split there.
	lines := []river.Line{
		{Name: "Chenab", Coords: orb.LineString{{72, 30}, {72, 31}}, Feature: 0},
		{Name: "Jhelum", Coords: orb.LineString{{73, 30.5}, {72, 30.5}}, Feature: 1},
	}

	planar := transform.Planarize(lines)
	named := transform.RecoverNames(planar, lines, "Unknown")
	for _, l := range named {
		fmt.Println(l.Name, l.Coords)
	}
	// Output:
	// Chenab [[72 30] [72 30.5]]
	// Chenab [[72 30.5] [72 31]]
	// Jhelum [[73 30.5] [72 30.5]]
}

func ExampleSegment() {
	// About 25 km of channel cut with a 10 km target.
	l := river.Line{Name: "Ravi", Coords: orb.LineString{{0, 0}, {25 / transform.KmPerDegree, 0}}}

	segs := transform.Segment(l, 10)
	for _, s := range segs {
		fmt.Printf("%.2f km\n", geom.Length(s.Coords)*transform.KmPerDegree)
	}
	// Output:
	// 8.33 km
	// 8.33 km
	// 8.33 km
}
