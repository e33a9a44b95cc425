package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Inexact evaluates predicates with plain float64 determinants. Determinants
// whose magnitude is at most Eps are treated as zero. It is fast and fine for
// well-spaced random points, but can misclassify nearly degenerate
// configurations; use Exact or Filtered when that matters.
type Inexact struct {
	Eps float64
}

func (k Inexact) sign(x float64) int {
	if math.Abs(x) <= k.Eps {
		return 0
	}
	return sign(x)
}

// Orient implements Kernel.
func (k Inexact) Orient(a, b, c, d r3.Vec) int {
	det, _ := orientDet(r3.Sub(b, a), r3.Sub(c, a), r3.Sub(d, a))
	return k.sign(det)
}

// InSphere implements Kernel.
func (k Inexact) InSphere(a, b, c, d, e r3.Vec) int {
	o := k.Orient(a, b, c, d)
	if o == 0 {
		return 0
	}
	det, _ := inSphereDet(a, b, c, d, e)
	return -k.sign(det) * o
}

// InCircle implements Kernel.
func (k Inexact) InCircle(a, b, c, d r3.Vec) int {
	if k.Collinear(a, b, c) {
		return 0
	}
	return k.InSphere(a, b, c, offPlane(a, b, c), d)
}

// Collinear implements Kernel.
func (k Inexact) Collinear(a, b, c r3.Vec) bool {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	return math.Abs(n.X) <= k.Eps &&
		math.Abs(n.Y) <= k.Eps &&
		math.Abs(n.Z) <= k.Eps
}
