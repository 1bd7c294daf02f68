package transform

import (
	"slices"

	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/river"
)

// Dissolve merges features sharing a name into one MultiLineString feature
// per name. The output is sorted by name and parts keep their input order.
// Features without geometry are dropped.
func Dissolve(features []river.Feature) []river.Feature {
	groups := make(map[string]orb.MultiLineString)
	for _, f := range features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			groups[f.Name] = append(groups[f.Name], g)
		case orb.MultiLineString:
			groups[f.Name] = append(groups[f.Name], g...)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]river.Feature, 0, len(names))
	for _, name := range names {
		out = append(out, river.Feature{Name: name, Geometry: groups[name]})
	}
	return out
}
