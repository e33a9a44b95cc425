package construct

import (
	"fmt"
	"math"

	gr3 "github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/delaunay"
)

const (
	// hullEps is the quickhull tolerance relative to the extent of the points.
	hullEps = 1e-10
	// hullTolerance is the allowed relative difference between the cell and
	// hull volumes.
	hullTolerance = 1e-6
)

// ValidationResult holds the summary statistics of a triangulation.
type ValidationResult struct {
	Dimension     int
	DelaunayValid bool

	FiniteVertices int
	FiniteEdges    int
	FiniteFacets   int
	FiniteCells    int
	InfiniteCells  int

	// Volume is the total volume of the finite cells and HullVolume is the
	// volume of the convex hull of the vertices, computed independently.
	Volume     float64
	HullVolume float64
	// Centroid is the volume-weighted barycenter of the finite cells.
	Centroid r3.Vec

	// MaxCircumradius is the largest circumradius of a finite cell. Slivers
	// counts cells too flat for their circumsphere to be computed in floating
	// point.
	MaxCircumradius float64
	Slivers         int
}

// Valid returns true if the triangulation is three dimensional and valid.
func (r ValidationResult) Valid() bool {
	return r.Dimension == 3 && r.DelaunayValid
}

// Validate checks t and computes its summary statistics. It returns a
// *ValidationFailure if t isn't three dimensional, breaks an invariant, or
// doesn't fill its convex hull.
func Validate(t *delaunay.Triangulation) (ValidationResult, error) {
	n := t.Counts()
	res := ValidationResult{
		Dimension:      t.Dimension(),
		FiniteVertices: n.Vertices,
		FiniteEdges:    n.Edges,
		FiniteFacets:   n.Facets,
		FiniteCells:    n.Cells,
		InfiniteCells:  n.InfiniteCells,
	}

	err := t.Validate()
	res.DelaunayValid = err == nil
	if err != nil {
		return res, &ValidationFailure{Result: res, Err: err}
	}
	if res.Dimension != 3 {
		return res, &ValidationFailure{Result: res}
	}

	for c := range t.FiniteCells() {
		tet := c.Tetra()
		vol := tet.Volume()
		res.Volume += vol
		res.Centroid = r3.Add(res.Centroid, r3.Scale(vol, tet.Barycenter()))

		if _, r, ok := tet.Circumsphere(); ok {
			res.MaxCircumradius = math.Max(res.MaxCircumradius, r)
		} else {
			res.Slivers++
		}
	}
	if res.Volume > 0 {
		res.Centroid = r3.Scale(1/res.Volume, res.Centroid)
	}
	res.HullVolume = hullVolume(t)

	if !volumesMatch(res.Volume, res.HullVolume) {
		res.DelaunayValid = false
		return res, &ValidationFailure{Result: res, Err: fmt.Errorf(
			"cells have volume %g, but the convex hull has volume %g",
			res.Volume, res.HullVolume,
		)}
	}
	return res, nil
}

// volumesMatch compares the cell and hull volumes with a purely relative
// tolerance, so it works at any length scale.
func volumesMatch(cells, hull float64) bool {
	return math.Abs(cells-hull) <= hullTolerance*math.Max(cells, hull)
}

// hullVolume computes the volume of the convex hull of the finite vertices
// with quickhull.
func hullVolume(t *delaunay.Triangulation) float64 {
	pts := make([]gr3.Vector, 0, t.NumberOfVertices())
	extent := 0.0
	for v := range t.FiniteVertices() {
		p := v.Point()
		pts = append(pts, gr3.Vector{X: p.X, Y: p.Y, Z: p.Z})
		extent = math.Max(extent, math.Max(math.Abs(p.X),
			math.Max(math.Abs(p.Y), math.Abs(p.Z))))
	}

	hull := new(quickhull.QuickHull).ConvexHull(pts, true, true, hullEps*extent)
	vol := 0.0
	for i := 0; i+2 < len(hull.Indices); i += 3 {
		a := pts[hull.Indices[i]]
		b := pts[hull.Indices[i+1]]
		c := pts[hull.Indices[i+2]]
		vol += a.Dot(b.Cross(c)) / 6
	}
	return math.Abs(vol)
}
