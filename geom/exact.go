package geom

import (
	"math/big"

	gr3 "github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Exact evaluates predicates without rounding error. float64 inputs are
// converted to arbitrary precision vectors and every intermediate quantity is
// exact, so degenerate configurations return 0 reliably.
type Exact struct{}

func precise(v r3.Vec) gr3.PreciseVector {
	return gr3.PreciseVectorFromVector(gr3.Vector{X: v.X, Y: v.Y, Z: v.Z})
}

// Orient implements Kernel.
func (Exact) Orient(a, b, c, d r3.Vec) int {
	return orientPrecise(precise(a), precise(b), precise(c), precise(d))
}

// InSphere implements Kernel.
func (Exact) InSphere(a, b, c, d, e r3.Vec) int {
	return inSpherePrecise(
		precise(a), precise(b), precise(c), precise(d), precise(e),
	)
}

// InCircle implements Kernel.
func (Exact) InCircle(a, b, c, d r3.Vec) int {
	pa, pb, pc := precise(a), precise(b), precise(c)
	n := pb.Sub(pa).Cross(pc.Sub(pa))
	if isZero(n) {
		return 0
	}
	return inSpherePrecise(pa, pb, pc, pa.Add(n), precise(d))
}

// Collinear implements Kernel.
func (Exact) Collinear(a, b, c r3.Vec) bool {
	pa := precise(a)
	return isZero(precise(b).Sub(pa).Cross(precise(c).Sub(pa)))
}

// exactFloat returns a zero whose precision is large enough that sums and
// products of float64-derived values are never rounded.
func exactFloat() *big.Float {
	return new(big.Float).SetPrec(big.MaxPrec)
}

func isZero(v gr3.PreciseVector) bool {
	return v.X.Sign() == 0 && v.Y.Sign() == 0 && v.Z.Sign() == 0
}

func orientPrecise(a, b, c, d gr3.PreciseVector) int {
	return triple(b.Sub(a), c.Sub(a), d.Sub(a)).Sign()
}

// triple returns u . (v x w).
func triple(u, v, w gr3.PreciseVector) *big.Float {
	return u.Dot(v.Cross(w))
}

// inSpherePrecise expands the lifted 4x4 determinant
//
//	| a-e  |a-e|^2 |
//	| b-e  |b-e|^2 |
//	| c-e  |c-e|^2 |
//	| d-e  |d-e|^2 |
//
// along its last column. The determinant is negative for points inside the
// sphere when Orient(a, b, c, d) is positive.
func inSpherePrecise(a, b, c, d, e gr3.PreciseVector) int {
	o := orientPrecise(a, b, c, d)
	if o == 0 {
		return 0
	}

	pa, pb, pc, pd := a.Sub(e), b.Sub(e), c.Sub(e), d.Sub(e)
	wa, wb, wc, wd := pa.Dot(pa), pb.Dot(pb), pc.Dot(pc), pd.Dot(pd)

	det := exactFloat().Mul(wb, triple(pa, pc, pd))
	det.Sub(det, exactFloat().Mul(wa, triple(pb, pc, pd)))
	det.Sub(det, exactFloat().Mul(wc, triple(pa, pb, pd)))
	det.Add(det, exactFloat().Mul(wd, triple(pa, pb, pc)))

	return -det.Sign() * o
}
