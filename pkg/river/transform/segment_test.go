package transform

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/rivergraph/pkg/geom"
	"github.com/matzehuels/rivergraph/pkg/river"
)

func kmLine(km float64) river.Line {
	return river.Line{Name: "R", Coords: orb.LineString{{0, 30}, {km / KmPerDegree, 30}}, Feature: 4}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		name      string
		lengthKm  float64
		targetKm  float64
		wantCount int
	}{
		{"longer than target", 25, 10, 3},
		{"shorter than target", 8, 10, 1},
		{"exactly target", 10, 10, 1},
		{"non-positive target", 25, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := kmLine(tt.lengthKm)
			segs := Segment(l, tt.targetKm)
			require.Len(t, segs, tt.wantCount)

			for _, s := range segs {
				assert.Equal(t, "R", s.Name)
				assert.Equal(t, 4, s.Feature)
				km := geom.Length(s.Coords) * KmPerDegree
				assert.InDelta(t, tt.lengthKm/float64(tt.wantCount), km, 1e-6)
			}
		})
	}
}

func TestSegmentUnchangedWhenShort(t *testing.T) {
	l := kmLine(8)
	segs := Segment(l, 10)
	require.Len(t, segs, 1)
	assert.Equal(t, l.Coords, segs[0].Coords)
}

func TestSegmentReconstruction(t *testing.T) {
	l := river.Line{Coords: orb.LineString{{0, 0}, {0.3, 0.1}, {0.35, 0.4}, {0.9, 0.45}, {1.2, 0}}}
	segs := Segment(l, 7)

	require.Greater(t, len(segs), 1)
	assert.Equal(t, l.Start(), segs[0].Start())
	assert.Equal(t, l.End(), segs[len(segs)-1].End())

	total := 0.0
	for i, s := range segs {
		total += geom.Length(s.Coords)
		if i > 0 {
			assert.Equal(t, segs[i-1].End(), s.Start(), "segment %d must start where %d ends", i, i-1)
		}
	}
	assert.InDelta(t, geom.Length(l.Coords), total, 1e-9)

	want := geom.Length(l.Coords) / float64(len(segs))
	for _, s := range segs {
		assert.InDelta(t, want, geom.Length(s.Coords), 1e-9)
	}
	assert.Equal(t, int(math.Ceil(geom.Length(l.Coords)*KmPerDegree/7)), len(segs))
}

func TestSegmentAllKeepsOrder(t *testing.T) {
	lines := []river.Line{kmLine(25), kmLine(5), kmLine(45)}
	got, err := SegmentAll(context.Background(), lines, 10, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 3)
	assert.Len(t, got[1], 1)
	assert.Len(t, got[2], 5)
}
