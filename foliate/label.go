/*package foliate assigns timeslices to points and classifies the cells of a
triangulation by how they straddle adjacent timeslices.
*/
package foliate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/delaunay"
)

// LabelFromCoordinate returns the timeslice containing the coordinate x:
// the slice t holds all points with t <= x < t + 1.
func LabelFromCoordinate(x float64) int {
	return int(math.Floor(x))
}

// Labeler is a rule for assigning a timeslice to a point.
type Labeler interface {
	Label(p r3.Vec) int
}

// Func returns l as a delaunay.LabelFunc.
func Func(l Labeler) delaunay.LabelFunc { return l.Label }

// Axis is one of the three coordinate axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// Coordinate returns the component of p along a.
func (a Axis) Coordinate(p r3.Vec) float64 {
	switch a {
	case X:
		return p.X
	case Y:
		return p.Y
	case Z:
		return p.Z
	}
	panic(fmt.Sprintf("Axis %d does not exist.", int(a)))
}

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// AxisFloor labels points by the floor of one of their coordinates.
type AxisFloor struct {
	Axis Axis
}

// Label implements Labeler.
func (l AxisFloor) Label(p r3.Vec) int {
	return LabelFromCoordinate(l.Axis.Coordinate(p))
}

// RadialShells labels points by the nearest of a set of concentric spheres
// centered on the origin with radii Spacing, 2 Spacing, ... so that a point
// at distance r is in timeslice round(r / Spacing).
type RadialShells struct {
	Spacing float64
}

// Label implements Labeler.
func (l RadialShells) Label(p r3.Vec) int {
	spacing := l.Spacing
	if spacing <= 0 {
		spacing = 1
	}
	return int(math.Round(r3.Norm(p) / spacing))
}
