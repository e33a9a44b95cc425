package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// epsilon is half the distance between 1.0 and the next float64.
	epsilon = 1.0 / (1 << 53)

	// Static error bounds, relative to the permanent of each determinant.
	// Both are looser than the tight bounds from Shewchuk's analysis.
	orientErrBound   = 8 * epsilon
	inSphereErrBound = 48 * epsilon
)

// Filtered evaluates predicates in float64 and only falls back to Exact when
// the rounding error of the float64 determinant could have flipped its sign.
// Results are always identical to Exact's.
type Filtered struct{}

// Orient implements Kernel.
func (Filtered) Orient(a, b, c, d r3.Vec) int {
	det, perm := orientDet(r3.Sub(b, a), r3.Sub(c, a), r3.Sub(d, a))
	if math.Abs(det) > orientErrBound*perm {
		return sign(det)
	}
	return Exact{}.Orient(a, b, c, d)
}

// orientDet returns u . (v x w) and the same expression evaluated with
// absolute values, which bounds the rounding error.
func orientDet(u, v, w r3.Vec) (det, perm float64) {
	m1 := v.Y*w.Z - v.Z*w.Y
	m2 := v.Z*w.X - v.X*w.Z
	m3 := v.X*w.Y - v.Y*w.X
	det = u.X*m1 + u.Y*m2 + u.Z*m3

	p1 := math.Abs(v.Y*w.Z) + math.Abs(v.Z*w.Y)
	p2 := math.Abs(v.Z*w.X) + math.Abs(v.X*w.Z)
	p3 := math.Abs(v.X*w.Y) + math.Abs(v.Y*w.X)
	perm = math.Abs(u.X)*p1 + math.Abs(u.Y)*p2 + math.Abs(u.Z)*p3
	return det, perm
}

// InSphere implements Kernel.
func (k Filtered) InSphere(a, b, c, d, e r3.Vec) int {
	o := k.Orient(a, b, c, d)
	if o == 0 {
		return 0
	}

	det, perm := inSphereDet(a, b, c, d, e)
	if math.Abs(det) > inSphereErrBound*perm {
		return -sign(det) * o
	}
	return Exact{}.InSphere(a, b, c, d, e)
}

// inSphereDet expands the lifted 4x4 in-sphere determinant along its last
// column (see inSpherePrecise) and returns it with its permanent.
func inSphereDet(a, b, c, d, e r3.Vec) (det, perm float64) {
	pa, pb, pc, pd := r3.Sub(a, e), r3.Sub(b, e), r3.Sub(c, e), r3.Sub(d, e)
	wa, wb, wc, wd := r3.Norm2(pa), r3.Norm2(pb), r3.Norm2(pc), r3.Norm2(pd)

	tBCD, pBCD := orientDet(pb, pc, pd)
	tACD, pACD := orientDet(pa, pc, pd)
	tABD, pABD := orientDet(pa, pb, pd)
	tABC, pABC := orientDet(pa, pb, pc)

	det = wb*tACD - wa*tBCD - wc*tABD + wd*tABC
	perm = wb*pACD + wa*pBCD + wc*pABD + wd*pABC
	return det, perm
}

// InCircle implements Kernel. Coplanar in-circle tests only arise on the
// convex hull, so they go straight to Exact.
func (Filtered) InCircle(a, b, c, d r3.Vec) int {
	return Exact{}.InCircle(a, b, c, d)
}

// Collinear implements Kernel.
func (Filtered) Collinear(a, b, c r3.Vec) bool {
	return Exact{}.Collinear(a, b, c)
}
