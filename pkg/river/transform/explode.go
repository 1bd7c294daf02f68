package transform

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/river"
)

// Explode converts features into single-part lines, in feature order and
// part order. Each line keeps its feature's name and records the feature's
// index. Features with no geometry, geometry types other than LineString and
// MultiLineString, and parts with fewer than two vertices produce nothing.
func Explode(features []river.Feature) []river.Line {
	var lines []river.Line
	for i, f := range features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = appendLine(lines, f.Name, g, i)
		case orb.MultiLineString:
			for _, part := range g {
				lines = appendLine(lines, f.Name, part, i)
			}
		}
	}
	return lines
}

func appendLine(lines []river.Line, name string, ls orb.LineString, feature int) []river.Line {
	if len(ls) < 2 {
		return lines
	}
	return append(lines, river.Line{
		Name:    name,
		Coords:  append(orb.LineString(nil), ls...),
		Feature: feature,
	})
}
