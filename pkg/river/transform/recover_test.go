package transform

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/rivergraph/pkg/river"
)

func TestRecoverNames(t *testing.T) {
	sources := []river.Line{
		{Name: "Main", Coords: orb.LineString{{0, 0}, {10, 0}}, Feature: 0},
		{Name: "Trib", Coords: orb.LineString{{5, 5}, {5, 0}}, Feature: 1},
	}
	planar := Planarize(sources)
	require.Len(t, planar, 3)

	got := RecoverNames(planar, sources, "Unknown")
	names := make(map[string]int)
	for _, l := range got {
		names[l.Name]++
	}
	assert.Equal(t, map[string]int{"Main": 2, "Trib": 1}, names)

	for _, l := range got {
		switch l.Name {
		case "Main":
			assert.Equal(t, 0, l.Feature)
		case "Trib":
			assert.Equal(t, 1, l.Feature)
		}
	}
}

func TestRecoverNamesFirstFeatureWins(t *testing.T) {
	sources := []river.Line{
		{Name: "Second", Coords: orb.LineString{{0, 0}, {4, 0}}, Feature: 3},
		{Name: "First", Coords: orb.LineString{{0, 0}, {2, 0}, {4, 0}}, Feature: 1},
	}
	lines := []river.Line{{Coords: orb.LineString{{0, 0}, {4, 0}}, Feature: river.NoFeature}}

	got := RecoverNames(lines, sources, "Unknown")
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, 1, got[0].Feature)
}

func TestRecoverNamesMultiPartFeature(t *testing.T) {
	// One feature split across two parts still covers a line spanning both.
	sources := []river.Line{
		{Name: "Ravi", Coords: orb.LineString{{0, 0}, {1, 0}}, Feature: 0},
		{Name: "Ravi", Coords: orb.LineString{{1, 0}, {2, 0}}, Feature: 0},
	}
	lines := []river.Line{{Coords: orb.LineString{{0, 0}, {1, 0}, {2, 0}}, Feature: river.NoFeature}}

	got := RecoverNames(lines, sources, "Unknown")
	assert.Equal(t, "Ravi", got[0].Name)
}

func TestRecoverNamesFallsBackToDefault(t *testing.T) {
	sources := []river.Line{
		{Name: "A", Coords: orb.LineString{{0, 0}, {1, 0}}, Feature: 0},
		{Name: "B", Coords: orb.LineString{{1, 0}, {2, 0}}, Feature: 1},
	}
	// A merged chain spans both features, so neither covers it alone.
	planar := Planarize(sources)
	require.Len(t, planar, 1)

	got := RecoverNames(planar, sources, "Unknown")
	assert.Equal(t, "Unknown", got[0].Name)
	assert.Equal(t, river.NoFeature, got[0].Feature)

	far := []river.Line{{Coords: orb.LineString{{50, 50}, {51, 51}}}}
	assert.Equal(t, "Unknown", RecoverNames(far, sources, "Unknown")[0].Name)
}
