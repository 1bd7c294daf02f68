package network

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/rivergraph/pkg/river"
)

func TestAddProximityEdges(t *testing.T) {
	// The heads of the two channels are about 10 km apart.
	segments := [][]river.Line{
		{seg("A", orb.Point{70, 30}, orb.Point{70, 30.5})},
		{seg("B", orb.Point{70.1, 30}, orb.Point{71, 31})},
	}
	g, err := Assemble(segments, AssembleOptions{})
	require.NoError(t, err)

	added, err := AddProximityEdges(g, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	prox := g.EdgesOfType(EdgeProximity)
	require.Len(t, prox, 2)
	assert.Equal(t, int64(3), prox[0].ID)
	assert.Equal(t, int64(4), prox[1].ID)
	assert.Equal(t, "70.00000_30.00000", prox[0].From)
	assert.Equal(t, "70.10000_30.00000", prox[0].To)
	assert.Equal(t, prox[0].From, prox[1].To)
	assert.Equal(t, prox[0].To, prox[1].From)
	assert.Equal(t, SpatialLinkName, prox[0].Name)
	assert.InDelta(t, 9.6, prox[0].LengthKm, 0.2)
	assert.Equal(t, orb.LineString{{70, 30}, {70.1, 30}}, prox[0].Geometry)
}

func TestAddProximityEdgesSkipsFlowLinked(t *testing.T) {
	segments := [][]river.Line{{seg("A", orb.Point{70, 30}, orb.Point{70, 30.01})}}
	g, err := Assemble(segments, AssembleOptions{})
	require.NoError(t, err)

	added, err := AddProximityEdges(g, 50)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestAddProximityEdgesDisabled(t *testing.T) {
	segments := [][]river.Line{
		{seg("A", orb.Point{70, 30}, orb.Point{70, 30.5})},
		{seg("B", orb.Point{70.1, 30}, orb.Point{71, 31})},
	}
	g, err := Assemble(segments, AssembleOptions{})
	require.NoError(t, err)

	added, err := AddProximityEdges(g, 0)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 2, g.EdgeCount())
}
