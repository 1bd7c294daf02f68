package transform

import (
	"slices"

	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
	"github.com/matzehuels/rivergraph/pkg/river/index"
)

// coverTolerance is the distance within which a point counts as lying on a
// source line. Planarization moves points by at most geom.Epsilon per axis.
const coverTolerance = 2 * geom.Epsilon

// RecoverNames restores channel names on planarized lines.
//
// Each line takes the name and feature index of the first source feature, by
// ascending feature index, whose parts cover it: every vertex and every
// segment midpoint of the line lies on some part of that feature. Lines that
// no single feature covers, such as chains joined across a confluence, get
// defaultName and river.NoFeature.
//
// sources are the lines the planarized lines were built from, carrying their
// names and feature indices.
func RecoverNames(lines, sources []river.Line, defaultName string) []river.Line {
	idx := index.Build(sources)
	out := make([]river.Line, len(lines))
	for i, l := range lines {
		out[i] = l
		out[i].Name, out[i].Feature = defaultName, river.NoFeature
		if f, ok := coveringFeature(l, sources, idx); ok {
			out[i].Name, out[i].Feature = sources[f].Name, sources[f].Feature
		}
	}
	return out
}

// coveringFeature returns the position in sources of a part belonging to the
// lowest-indexed feature covering l.
func coveringFeature(l river.Line, sources []river.Line, idx *index.Index) (int, bool) {
	if len(l.Coords) == 0 {
		return 0, false
	}
	candidates := idx.Query(l.Coords.Bound().Pad(coverTolerance))

	byFeature := make(map[int][]int)
	var features []int
	for _, j := range candidates {
		f := sources[j].Feature
		if _, ok := byFeature[f]; !ok {
			features = append(features, f)
		}
		byFeature[f] = append(byFeature[f], j)
	}
	slices.Sort(features)

	samples := coverSamples(l.Coords)
	for _, f := range features {
		parts := byFeature[f]
		if coversAll(sources, parts, samples) {
			return parts[0], true
		}
	}
	return 0, false
}

func coverSamples(ls orb.LineString) []orb.Point {
	samples := slices.Clone([]orb.Point(ls))
	for i := 1; i < len(ls); i++ {
		samples = append(samples, orb.Point{(ls[i-1][0] + ls[i][0]) / 2, (ls[i-1][1] + ls[i][1]) / 2})
	}
	return samples
}

func coversAll(sources []river.Line, parts []int, samples []orb.Point) bool {
	for _, p := range samples {
		covered := false
		for _, j := range parts {
			if _, d, _ := geom.ClosestPoint(sources[j].Coords, p); d <= coverTolerance {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
