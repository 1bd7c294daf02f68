// Package index provides a read-only spatial index over river lines.
//
// An [Index] is built once from a slice of lines and may then be queried
// concurrently from any number of goroutines. Queries return line positions
// in ascending order so callers that break ties by first match stay
// deterministic regardless of tree layout.
package index

import (
	"slices"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/matzehuels/rivergraph/pkg/river"
)

// Index is an immutable R-tree snapshot of line bounding boxes.
// The zero value is an empty index.
type Index struct {
	tree rtree.RTreeG[int]
	n    int
}

// Build indexes the bounding box of every line. Lines with no vertices are
// not indexed but still count toward positions, so query results are always
// valid indices into lines.
func Build(lines []river.Line) *Index {
	idx := &Index{}
	for i, l := range lines {
		if len(l.Coords) == 0 {
			continue
		}
		b := l.Coords.Bound()
		idx.tree.Insert(b.Min, b.Max, i)
		idx.n++
	}
	return idx
}

// BuildBounds indexes arbitrary bounding boxes keyed by their position.
func BuildBounds(bounds []orb.Bound) *Index {
	idx := &Index{}
	for i, b := range bounds {
		idx.tree.Insert(b.Min, b.Max, i)
		idx.n++
	}
	return idx
}

// Query returns the positions of all indexed boxes intersecting b, sorted
// ascending.
func (idx *Index) Query(b orb.Bound) []int {
	var hits []int
	idx.tree.Search(b.Min, b.Max, func(_, _ [2]float64, i int) bool {
		hits = append(hits, i)
		return true
	})
	slices.Sort(hits)
	return hits
}

// QueryPoint returns the positions of all boxes within distance d of p on
// either axis, sorted ascending.
func (idx *Index) QueryPoint(p orb.Point, d float64) []int {
	return idx.Query(orb.Bound{
		Min: orb.Point{p[0] - d, p[1] - d},
		Max: orb.Point{p[0] + d, p[1] + d},
	})
}

// Len returns the number of indexed boxes.
func (idx *Index) Len() int { return idx.n }
