package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tetra is a tetrahedron with corners in open (non-periodic) space.
//
// NOTE: Tetra caches its volume and barycenter. If Corners is modified
// directly, Init must be called again before those methods are used.
type Tetra struct {
	Corners [4]r3.Vec
	volume  float64
	bary    r3.Vec

	volumeValid, baryValid bool
}

const (
	eps = 1e-9
)

// NewTetra creates a new tetrahedron with corners at the specified positions.
func NewTetra(c1, c2, c3, c4 r3.Vec) *Tetra {
	t := &Tetra{}
	t.Init(c1, c2, c3, c4)
	return t
}

// Init initializes a tetrahedron to correspond to the given corners.
func (t *Tetra) Init(c1, c2, c3, c4 r3.Vec) {
	t.volumeValid = false
	t.baryValid = false
	t.Corners = [4]r3.Vec{c1, c2, c3, c4}
}

// Volume computes the volume of a tetrahedron.
func (t *Tetra) Volume() float64 {
	if t.volumeValid {
		return t.volume
	}

	t.volume = math.Abs(t.SignedVolume())
	t.volumeValid = true
	return t.volume
}

// SignedVolume returns the volume of the tetrahedron with a sign that is
// positive when Corners[3] lies on the positive side of the first three
// corners. It agrees in sign with Inexact.Orient.
func (t *Tetra) SignedVolume() float64 {
	return signedVolume(&t.Corners[0], &t.Corners[1], &t.Corners[2], &t.Corners[3])
}

func signedVolume(c1, c2, c3, c4 *r3.Vec) float64 {
	buf1 := r3.Sub(*c2, *c1)
	buf2 := r3.Sub(*c3, *c1)
	buf3 := r3.Sub(*c4, *c1)
	return r3.Dot(buf1, r3.Cross(buf2, buf3)) / 6.0
}

// Contains returns true if a tetrahedron contains the given point and false
// otherwise. Points within a relative tolerance of the surface count as
// contained.
func (t *Tetra) Contains(v r3.Vec) bool {
	vol := t.Volume()
	if vol == 0 {
		return false
	}

	// Replacing corner k by v gives v's k-th barycentric weight times the
	// signed volume.
	var volSum float64
	sign := math.Signbit(t.SignedVolume())
	for k := 0; k < 4; k++ {
		c := t.Corners
		c[k] = v
		vi := signedVolume(&c[0], &c[1], &c[2], &c[3])
		if math.Abs(vi) > vol*eps && math.Signbit(vi) != sign {
			return false
		}
		volSum += math.Abs(vi)
		if volSum > vol*(1+eps) {
			return false
		}
	}
	return true
}

// Barycenter computes the barycenter of a tetrahedron.
func (t *Tetra) Barycenter() r3.Vec {
	if t.baryValid {
		return t.bary
	}

	sum := r3.Add(r3.Add(t.Corners[0], t.Corners[1]),
		r3.Add(t.Corners[2], t.Corners[3]))
	t.bary = r3.Scale(0.25, sum)
	t.baryValid = true
	return t.bary
}

// Circumsphere returns the center and radius of the sphere passing through
// all four corners. ok is false if the tetrahedron is flat.
func (t *Tetra) Circumsphere() (center r3.Vec, radius float64, ok bool) {
	// |x - c_i|^2 = |x - c_0|^2 for i = 1..3 is linear in x:
	// 2 (c_i - c_0) . x = |c_i|^2 - |c_0|^2.
	c0 := t.Corners[0]
	a := mat.NewDense(3, 3, nil)
	b := mat.NewVecDense(3, nil)
	for i := 1; i < 4; i++ {
		d := r3.Sub(t.Corners[i], c0)
		a.SetRow(i-1, []float64{2 * d.X, 2 * d.Y, 2 * d.Z})
		b.SetVec(i-1, r3.Norm2(t.Corners[i])-r3.Norm2(c0))
	}

	if math.Abs(mat.Det(a)) < eps*detScale(a) {
		return r3.Vec{}, 0, false
	}

	x := mat.NewVecDense(3, nil)
	if err := x.SolveVec(a, b); err != nil {
		return r3.Vec{}, 0, false
	}

	center = r3.Vec{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	return center, r3.Norm(r3.Sub(center, c0)), true
}

// detScale is the cube of the largest entry of a, the scale of its determinant.
func detScale(a *mat.Dense) float64 {
	max := 0.0
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := math.Abs(a.At(i, j)); v > max {
				max = v
			}
		}
	}
	return max * max * max
}
