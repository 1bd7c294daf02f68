package geom

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestLength(t *testing.T) {
	ls := orb.LineString{{0, 0}, {3, 0}, {3, 4}}
	if got := Length(ls); got != 7 {
		t.Errorf("Length() = %v, want 7", got)
	}
}

func TestDegenerate(t *testing.T) {
	tests := []struct {
		name string
		ls   orb.LineString
		want bool
	}{
		{"empty", nil, true},
		{"single", orb.LineString{{1, 1}}, true},
		{"repeated", orb.LineString{{1, 1}, {1, 1}, {1, 1}}, true},
		{"valid", orb.LineString{{1, 1}, {1, 1}, {2, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Degenerate(tt.ls); got != tt.want {
				t.Errorf("Degenerate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClosestPoint(t *testing.T) {
	ls := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	tests := []struct {
		name      string
		p         orb.Point
		wantPoint orb.Point
		wantDist  float64
		wantAlong float64
	}{
		{"interior of first segment", orb.Point{4, 3}, orb.Point{4, 0}, 3, 4},
		{"interior of second segment", orb.Point{12, 5}, orb.Point{10, 5}, 2, 15},
		{"before start clamps", orb.Point{-3, -4}, orb.Point{0, 0}, 5, 0},
		{"on the line", orb.Point{10, 2}, orb.Point{10, 2}, 0, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, d, along := ClosestPoint(ls, tt.p)
			if !Near(q, tt.wantPoint) {
				t.Errorf("point = %v, want %v", q, tt.wantPoint)
			}
			if math.Abs(d-tt.wantDist) > 1e-12 {
				t.Errorf("dist = %v, want %v", d, tt.wantDist)
			}
			if math.Abs(along-tt.wantAlong) > 1e-12 {
				t.Errorf("along = %v, want %v", along, tt.wantAlong)
			}
		})
	}
}

func TestClosestPointEmpty(t *testing.T) {
	_, d, _ := ClosestPoint(nil, orb.Point{1, 1})
	if !math.IsInf(d, 1) {
		t.Errorf("dist = %v, want +Inf", d)
	}
}

func TestCut(t *testing.T) {
	ls := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	pieces := Cut(ls, []float64{5, 10, 15})
	if len(pieces) != 4 {
		t.Fatalf("len(pieces) = %d, want 4: %v", len(pieces), pieces)
	}
	for i := 1; i < len(pieces); i++ {
		prev := pieces[i-1]
		if prev[len(prev)-1] != pieces[i][0] {
			t.Errorf("piece %d does not start where piece %d ends", i, i-1)
		}
	}
	// The cut at 10 lands on vertex (10, 0) and must reuse it.
	if pieces[1][len(pieces[1])-1] != (orb.Point{10, 0}) {
		t.Errorf("cut on vertex = %v, want exact (10, 0)", pieces[1][len(pieces[1])-1])
	}
	for i, p := range pieces {
		if got := Length(p); math.Abs(got-5) > 1e-9 {
			t.Errorf("piece %d length = %v, want 5", i, got)
		}
	}
	if last := pieces[3]; last[len(last)-1] != ls[len(ls)-1] {
		t.Errorf("last piece ends at %v, want %v", last[len(last)-1], ls[len(ls)-1])
	}
}

func TestCutIgnoresOutOfRange(t *testing.T) {
	ls := orb.LineString{{0, 0}, {4, 0}}
	pieces := Cut(ls, []float64{0, 4, 5})
	if len(pieces) != 1 {
		t.Fatalf("len(pieces) = %d, want 1", len(pieces))
	}
	if len(pieces[0]) != 2 {
		t.Errorf("piece = %v, want original line", pieces[0])
	}
}

func TestIntersectSegments(t *testing.T) {
	tests := []struct {
		name   string
		a1, a2 orb.Point
		b1, b2 orb.Point
		want   []orb.Point
	}{
		{
			name: "proper crossing",
			a1:   orb.Point{0, 0}, a2: orb.Point{2, 2},
			b1: orb.Point{0, 2}, b2: orb.Point{2, 0},
			want: []orb.Point{{1, 1}},
		},
		{
			name: "disjoint",
			a1:   orb.Point{0, 0}, a2: orb.Point{1, 0},
			b1: orb.Point{0, 1}, b2: orb.Point{1, 1},
			want: nil,
		},
		{
			name: "t-junction returns exact endpoint",
			a1:   orb.Point{0, 0}, a2: orb.Point{10, 0},
			b1: orb.Point{3, 5}, b2: orb.Point{3, 0},
			want: []orb.Point{{3, 0}},
		},
		{
			name: "shared endpoint",
			a1:   orb.Point{0, 0}, a2: orb.Point{1, 1},
			b1: orb.Point{1, 1}, b2: orb.Point{2, 0},
			want: []orb.Point{{1, 1}},
		},
		{
			name: "collinear overlap",
			a1:   orb.Point{0, 0}, a2: orb.Point{4, 0},
			b1: orb.Point{2, 0}, b2: orb.Point{6, 0},
			want: []orb.Point{{4, 0}, {2, 0}},
		},
		{
			name: "parallel apart",
			a1:   orb.Point{0, 0}, a2: orb.Point{4, 0},
			b1: orb.Point{0, 1}, b2: orb.Point{4, 1},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntersectSegments(tt.a1, tt.a2, tt.b1, tt.b2)
			if len(got) != len(tt.want) {
				t.Fatalf("IntersectSegments() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !Near(got[i], tt.want[i]) {
					t.Errorf("point %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegmentParam(t *testing.T) {
	if got := SegmentParam(orb.Point{0, 0}, orb.Point{10, 0}, orb.Point{2.5, 3}); got != 0.25 {
		t.Errorf("SegmentParam() = %v, want 0.25", got)
	}
	if got := SegmentParam(orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{5, 5}); got != 0 {
		t.Errorf("SegmentParam() on zero-length = %v, want 0", got)
	}
}
