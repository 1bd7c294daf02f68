// Package geom provides planar line geometry primitives used by the river
// network transforms.
//
// Coordinates are [orb.Point] values in (longitude, latitude) degrees and all
// measures are planar in those units, which matches how channel lengths and
// snap tolerances are expressed throughout rivergraph. Conversion to
// kilometers happens at graph assembly time.
//
// # Exact joints
//
// [Cut] and [IntersectSegments] never produce two slightly different copies of
// the same point: consecutive pieces share their cut vertex exactly, and a
// computed point within [Epsilon] of an existing vertex is replaced by that
// vertex. Downstream node identity relies on this.
package geom
