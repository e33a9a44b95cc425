/*package sample generates the points a triangulation is built from: random
streams for incremental growth and fixed seeds with a known foliation.
*/
package sample

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
)

// Source is an unbounded stream of points. Sources are stateful and are not
// safe for concurrent use.
type Source interface {
	Next() r3.Vec
}

// NewRand returns a generator seeded deterministically from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// InBall returns points uniformly distributed inside a ball centered on the
// origin.
type InBall struct {
	Radius float64
	Rand   *rand.Rand
}

// Next implements Source.
func (s *InBall) Next() r3.Vec {
	for {
		p := r3.Vec{
			X: 2*s.Rand.Float64() - 1,
			Y: 2*s.Rand.Float64() - 1,
			Z: 2*s.Rand.Float64() - 1,
		}
		if r3.Norm2(p) < 1 {
			return r3.Scale(s.Radius, p)
		}
	}
}

// OnSphere returns points uniformly distributed on a sphere centered on the
// origin.
type OnSphere struct {
	Radius float64
	Rand   *rand.Rand
}

// Next implements Source.
func (s *OnSphere) Next() r3.Vec {
	return r3.Scale(s.Radius, unitVector(s.Rand))
}

func unitVector(gen *rand.Rand) r3.Vec {
	for {
		p := r3.Vec{X: gen.NormFloat64(), Y: gen.NormFloat64(), Z: gen.NormFloat64()}
		if n := r3.Norm(p); n > 1e-12 {
			return r3.Scale(1/n, p)
		}
	}
}

// Shells returns points on the concentric spheres of radius Spacing,
// 2 Spacing, ..., Timeslices Spacing. Shell k is chosen with probability
// proportional to k^2, so all shells have the same density of points.
type Shells struct {
	Timeslices int
	Spacing    float64
	Rand       *rand.Rand

	cdf []float64
}

// Next implements Source.
func (s *Shells) Next() r3.Vec {
	if s.cdf == nil {
		s.cdf = shellCDF(s.Timeslices)
	}
	x := s.Rand.Float64()
	k := 1
	for k < len(s.cdf) && s.cdf[k-1] <= x {
		k++
	}
	shell := OnSphere{Radius: float64(k) * s.spacing(), Rand: s.Rand}
	return shell.Next()
}

func (s *Shells) spacing() float64 {
	if s.Spacing <= 0 {
		return 1
	}
	return s.Spacing
}

// Slabs returns points on the planes z = First, First + 1, ...,
// First + Timeslices - 1, uniformly distributed in a disc of radius Radius
// around the z axis. Every plane is equally likely. Points from Slabs have
// integer z, so foliate.AxisFloor labels them with their plane.
type Slabs struct {
	First, Timeslices int
	Radius            float64
	Rand              *rand.Rand
}

// Next implements Source.
func (s *Slabs) Next() r3.Vec {
	k := 0
	if s.Timeslices > 1 {
		k = s.Rand.IntN(s.Timeslices)
	}
	r := s.Radius * math.Sqrt(s.Rand.Float64())
	theta := 2 * math.Pi * s.Rand.Float64()
	return r3.Vec{
		X: r * math.Cos(theta), Y: r * math.Sin(theta), Z: float64(s.First + k),
	}
}

// shellCDF returns the cumulative probability of choosing shells 1..n.
func shellCDF(n int) []float64 {
	if n < 1 {
		n = 1
	}
	cdf := make([]float64, n)
	sum := 0.0
	for k := 1; k <= n; k++ {
		sum += float64(k * k)
		cdf[k-1] = sum
	}
	for i := range cdf {
		cdf[i] /= sum
	}
	cdf[n-1] = math.Inf(1)
	return cdf
}
