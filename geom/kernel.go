/*package geom contains the geometric predicates used to build Delaunay
triangulations, along with a few tetrahedron utilities.

All predicates are sign tests. Orient(a, b, c, d) is positive when
(b - a) . ((c - a) x (d - a)) > 0, i.e. when d lies on the side of the plane
through a, b, c that the right-handed normal of (a, b, c) points toward.
InSphere and InCircle are positive when the query point is strictly inside the
sphere (circle), independent of the orientation of the defining points.

Three kernels implement the Kernel interface. Exact evaluates every predicate
in arbitrary precision. Inexact uses float64 determinants and an absolute
tolerance. Filtered uses float64 arithmetic with a static error bound and falls
back to Exact only when the sign cannot be certified.
*/
package geom

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kernel is a set of orientation and in-sphere predicates.
type Kernel interface {
	// Orient returns the sign of (b - a) . ((c - a) x (d - a)).
	Orient(a, b, c, d r3.Vec) int
	// InSphere returns +1 if e is strictly inside the sphere through a, b,
	// c, d, -1 if it is strictly outside and 0 if it is on the sphere or
	// the four points are coplanar.
	InSphere(a, b, c, d, e r3.Vec) int
	// InCircle returns +1 if d, which must be coplanar with a, b, c, is
	// strictly inside their circumcircle, -1 if outside and 0 if on it.
	InCircle(a, b, c, d r3.Vec) int
	// Collinear returns true if the three points lie on one line.
	Collinear(a, b, c r3.Vec) bool
}

// KernelNames lists the names accepted by KernelByName.
var KernelNames = []string{"Exact", "Filtered", "Inexact"}

// KernelByName returns the kernel with the given (case-insensitive) name.
func KernelByName(name string) (Kernel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "exact":
		return Exact{}, true
	case "filtered", "":
		return Filtered{}, true
	case "inexact":
		return Inexact{}, true
	}
	return nil, false
}

func sign(x float64) int {
	if x > 0 {
		return +1
	} else if x < 0 {
		return -1
	}
	return 0
}

// offPlane returns a point which is not in the plane of a, b, c (unless they
// are collinear). Any sphere through a, b, c meets that plane in their
// circumcircle, so the sphere through a, b, c, offPlane(a, b, c) can be used
// for in-circle tests.
func offPlane(a, b, c r3.Vec) r3.Vec {
	return r3.Add(a, r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}
