package sample

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/foliate"
)

// SeedPoint is a point with the timeslice it should be created in.
type SeedPoint struct {
	P         r3.Vec
	Timeslice int
}

// SeedStrategy produces the fixed, ordered set of points a foliated
// triangulation starts from.
type SeedStrategy interface {
	Name() string
	Points() ([]SeedPoint, error)
}

// MinimalSeed is the smallest foliated seed: the corner tetrahedron
// (0,0,0), (1,0,0), (0,1,0), (0,0,1) and the apex (0,0,-1) below it. Points
// are labeled by the floor of their z coordinate, which gives one (3,1) cell
// and one (1,3) cell.
type MinimalSeed struct{}

// MinimalSeedPoints are the points of MinimalSeed in insertion order.
var MinimalSeedPoints = []r3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 0, Z: -1},
}

// Name implements SeedStrategy.
func (MinimalSeed) Name() string { return "Minimal" }

// Points implements SeedStrategy.
func (MinimalSeed) Points() ([]SeedPoint, error) {
	l := foliate.AxisFloor{Axis: foliate.Z}
	ps := make([]SeedPoint, len(MinimalSeedPoints))
	for i, p := range MinimalSeedPoints {
		ps[i] = SeedPoint{P: p, Timeslice: l.Label(p)}
	}
	return ps, nil
}

// SphereSeed places points on the concentric spheres of radius 1..Timeslices
// (scaled by Spacing), with PerShell k^2 points on shell k, all labeled k.
// A single point at the origin is labeled 0.
type SphereSeed struct {
	Timeslices int
	PerShell   int
	Spacing    float64
	Rand       *rand.Rand
}

// Name implements SeedStrategy.
func (SphereSeed) Name() string { return "Sphere" }

// Points implements SeedStrategy.
func (s SphereSeed) Points() ([]SeedPoint, error) {
	if s.Timeslices < 1 {
		return nil, fmt.Errorf("Sphere seed needs at least one timeslice, not %d.",
			s.Timeslices)
	}
	if s.Rand == nil {
		return nil, fmt.Errorf("Sphere seed has no random number generator.")
	}
	perShell := s.PerShell
	if perShell < 4 {
		perShell = 4
	}
	spacing := s.Spacing
	if spacing <= 0 {
		spacing = 1
	}

	ps := []SeedPoint{{P: r3.Vec{}, Timeslice: 0}}
	for k := 1; k <= s.Timeslices; k++ {
		shell := OnSphere{Radius: float64(k) * spacing, Rand: s.Rand}
		for i := 0; i < perShell*k*k; i++ {
			ps = append(ps, SeedPoint{P: shell.Next(), Timeslice: k})
		}
	}
	return ps, nil
}

// FileSeed reads seed points from a whitespace-separated text file with
// columns x y z, or x y z t when HasTimeslice is set. Without a timeslice
// column, points are labeled by Labeler, or by the floor of z if Labeler is
// nil.
type FileSeed struct {
	Path         string
	HasTimeslice bool
	Labeler      foliate.Labeler
}

// Name implements SeedStrategy.
func (FileSeed) Name() string { return "File" }

// Points implements SeedStrategy.
func (s FileSeed) Points() ([]SeedPoint, error) {
	return ReadSeedFile(s.Path, s.HasTimeslice, s.Labeler)
}

// ReadSeedFile reads the seed file described by FileSeed.
func ReadSeedFile(
	fname string, hasTimeslice bool, l foliate.Labeler,
) ([]SeedPoint, error) {
	colIdxs := []int{0, 1, 2}
	if hasTimeslice {
		colIdxs = append(colIdxs, 3)
	}
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = foliate.AxisFloor{Axis: foliate.Z}
	}

	xs, ys, zs := cols[0], cols[1], cols[2]
	ps := make([]SeedPoint, len(xs))
	for i := range ps {
		p := r3.Vec{X: xs[i], Y: ys[i], Z: zs[i]}
		ps[i].P = p
		if !hasTimeslice {
			ps[i].Timeslice = l.Label(p)
			continue
		}

		t := cols[3][i]
		if t != math.Trunc(t) {
			return nil, fmt.Errorf(
				"Timeslice %g in row %d of %s is not an integer.", t, i+1, fname,
			)
		}
		ps[i].Timeslice = int(t)
	}
	return ps, nil
}

// SeedNames lists the names of the seed strategies.
var SeedNames = []string{"Minimal", "Sphere", "File"}
