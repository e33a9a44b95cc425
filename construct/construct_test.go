package construct

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/delaunay"
	"github.com/phil-mansfield/gocdt/foliate"
	"github.com/phil-mansfield/gocdt/report"
	"github.com/phil-mansfield/gocdt/sample"
)

func foliated() Params {
	return Params{
		Simplices: 2, Timeslices: 2, Dimension: 3, Topology: Spherical,
		Alpha: 1.1, K: 2.2, Lambda: 3.3, Passes: 100,
		Mode: Foliated, Seed: "Minimal",
	}
}

func random() Params {
	return Params{
		Simplices: 200, Timeslices: 4, Dimension: 3, Topology: Spherical,
		Alpha: 1.1, K: 2.2, Lambda: 3.3, Passes: 100,
		Mode: Random, Radius: 1, RandomSeed: 1,
	}
}

// points is a Source which cycles through a fixed list.
type points struct {
	ps    []r3.Vec
	calls int
}

func (s *points) Next() r3.Vec {
	p := s.ps[s.calls%len(s.ps)]
	s.calls++
	return p
}

type countingSeed struct {
	ps    []sample.SeedPoint
	calls int
}

func (s *countingSeed) Name() string { return "Counting" }

func (s *countingSeed) Points() ([]sample.SeedPoint, error) {
	s.calls++
	return s.ps, nil
}

// recorder keeps the conflict sizes of accepted and rejected points.
type recorder struct {
	report.Nop
	inserted, rejected []int
	summary            report.Summary
}

func (r *recorder) Inserted(conflictCells, finiteCells int) {
	r.inserted = append(r.inserted, conflictCells)
}

func (r *recorder) Rejected(conflictCells int) {
	r.rejected = append(r.rejected, conflictCells)
}

func (r *recorder) Finished(s report.Summary) { r.summary = s }

func TestCheck(t *testing.T) {
	require.NoError(t, func() error { p := foliated(); return p.Check() }())
	require.NoError(t, func() error { p := random(); return p.Check() }())

	tests := []struct {
		field  string
		modify func(p *Params)
	}{
		{"Dimension", func(p *Params) { p.Dimension = 4 }},
		{"Topology", func(p *Params) { p.Topology = Toroidal }},
		{"Alpha", func(p *Params) { p.Alpha = 0.3 }},
		{"Alpha", func(p *Params) { p.Alpha = -0.49 }},
		{"Alpha", func(p *Params) { p.Alpha = math.NaN() }},
		{"Simplices", func(p *Params) { p.Simplices = 0 }},
		{"Timeslices", func(p *Params) { p.Timeslices = -1 }},
		{"Passes", func(p *Params) { p.Passes = -1 }},
		{"MaxAttempts", func(p *Params) { p.MaxAttempts = -1 }},
		{"Kernel", func(p *Params) { p.Kernel = "Approximate" }},
		{"Seed", func(p *Params) { p.Seed = "" }},
		{"Seed", func(p *Params) { p.Seed = "Torus" }},
		{"SeedFile", func(p *Params) { p.Seed = "File" }},
		{"Spacing", func(p *Params) { p.Spacing = -1 }},
		{"Radius", func(p *Params) { p.Mode, p.Radius = Random, 0 }},
		{"Mode", func(p *Params) { p.Mode = Mode(7) }},
	}

	for _, test := range tests {
		p := foliated()
		test.modify(&p)
		err := p.Check()
		var cerr *ConfigurationError
		if assert.ErrorAs(t, err, &cerr, test.field) {
			assert.Equal(t, test.field, cerr.Field)
			assert.ErrorIs(t, err, ErrConfiguration)
		}
	}

	p := foliated()
	p.Alpha = -0.5
	assert.NoError(t, p.Check())
}

func TestConfigurationErrorBuildsNothing(t *testing.T) {
	for _, modify := range []func(p *Params){
		func(p *Params) { p.Dimension = 4 },
		func(p *Params) { p.Alpha = 0.3 },
		func(p *Params) { p.Topology = Toroidal },
	} {
		p := foliated()
		modify(&p)
		src := &points{ps: []r3.Vec{{X: 2}}}
		seed := &countingSeed{}

		res, err := NewBuilder(p, WithSource(src), WithSeed(seed)).
			Build(context.Background())
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Equal(t, 0, src.calls)
		assert.Equal(t, 0, seed.calls)
	}
}

func TestMinimalSeedBuild(t *testing.T) {
	res, err := NewBuilder(foliated()).Build(context.Background())
	require.NoError(t, err)

	v := res.Validation
	assert.True(t, v.Valid())
	assert.Equal(t, 3, v.Dimension)
	assert.Equal(t, 5, v.FiniteVertices)
	assert.Equal(t, 9, v.FiniteEdges)
	assert.Equal(t, 7, v.FiniteFacets)
	assert.Equal(t, 2, v.FiniteCells)
	assert.Equal(t, 6, v.InfiniteCells)
	assert.InDelta(t, 1.0/3, v.Volume, 1e-12)
	assert.InDelta(t, 1.0/3, v.HullVolume, 1e-9)
	assert.InDelta(t, 0.25, v.Centroid.X, 1e-12)
	assert.InDelta(t, 0.25, v.Centroid.Y, 1e-12)
	assert.InDelta(t, 0.0, v.Centroid.Z, 1e-12)
	assert.InDelta(t, math.Sqrt(3)/2, v.MaxCircumradius, 1e-9)
	assert.Equal(t, 0, v.Slivers)

	cl := res.Classification
	require.NotNil(t, cl)
	assert.True(t, cl.Consistent())
	assert.Equal(t, 1, cl.ThreeOne)
	assert.Equal(t, 1, cl.OneThree)
	assert.Len(t, cl.TimelikeEdges, 6)

	assert.Equal(t, 0, res.Summary.Attempts)
	assert.True(t, res.Summary.Converged)
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestParityFilter(t *testing.T) {
	f := ParityFilter{}
	assert.True(t, f.Accept(0))
	assert.True(t, f.Accept(2))
	assert.False(t, f.Accept(1))
	assert.False(t, f.Accept(7))
	assert.True(t, AcceptAll{}.Accept(7))

	// Inside the upper cell only its own sphere is in conflict; the point in
	// the shared triangle conflicts with both cells.
	src := &points{ps: []r3.Vec{
		{X: 0.05, Y: 0.05, Z: 0.8},
		{X: 1.0 / 3, Y: 1.0 / 3},
	}}
	rec := &recorder{}
	p := foliated()
	p.Simplices = 6
	p.MaxAttempts = 2

	res, err := NewBuilder(p,
		WithSource(src), WithFilter(ParityFilter{}), WithReporter(rec),
	).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1}, rec.rejected)
	assert.Equal(t, []int{2}, rec.inserted)
	assert.Equal(t, 6, res.Validation.FiniteCells)

	cl := res.Classification
	assert.Equal(t, 3, cl.ThreeOne)
	assert.Equal(t, 3, cl.OneThree)
}

func TestRandomBuild(t *testing.T) {
	rec := &recorder{}
	res, err := NewBuilder(random(), WithReporter(rec)).Build(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Validation.Valid())
	assert.GreaterOrEqual(t, res.Validation.FiniteCells, 200)
	assert.InDelta(t, res.Validation.HullVolume, res.Validation.Volume, 1e-9)

	for _, n := range rec.inserted {
		assert.Zero(t, n%2, "accepted conflict region of size %d", n)
	}
	for _, n := range rec.rejected {
		assert.NotZero(t, n%2, "rejected conflict region of size %d", n)
	}

	s := res.Summary
	assert.Equal(t, s, rec.summary)
	assert.Equal(t, s.Attempts, s.Inserted+s.Rejected+s.Duplicates+s.Degenerate)
	assert.Equal(t, len(rec.inserted), s.Inserted)
	assert.Equal(t, res.Validation.FiniteVertices, 4+s.Inserted)

	for v := range res.Triangulation.FiniteVertices() {
		want := foliate.RadialShells{Spacing: 0.25}.Label(v.Point())
		assert.Equal(t, want, v.Timeslice())
	}
}

func TestRandomBuildIsDeterministic(t *testing.T) {
	a, err := NewBuilder(random()).Build(context.Background())
	require.NoError(t, err)
	b, err := NewBuilder(random()).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.Validation, b.Validation)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestNotConverged(t *testing.T) {
	p := random()
	p.Simplices = 100000
	p.MaxAttempts = 20

	res, err := NewBuilder(p).Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConverged)

	var nerr *NotConvergedError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, 20, nerr.Attempts)
	assert.Equal(t, 100000, nerr.Target)

	require.NotNil(t, res)
	assert.False(t, res.Summary.Converged)
	assert.True(t, res.Validation.Valid())
	assert.NotNil(t, res.Classification)
	assert.Equal(t, nerr.FiniteCells, res.Validation.FiniteCells)
}

func TestDegenerateSeedAborts(t *testing.T) {
	seed := &countingSeed{ps: []sample.SeedPoint{
		{P: r3.Vec{}}, {P: r3.Vec{X: 1}}, {P: r3.Vec{X: math.NaN()}},
	}}
	p := foliated()
	res, err := NewBuilder(p, WithSeed(seed)).Build(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, delaunay.ErrInvalidPoint)
}

func TestFlatSeedFailsValidation(t *testing.T) {
	seed := &countingSeed{ps: []sample.SeedPoint{
		{P: r3.Vec{}}, {P: r3.Vec{X: 1}}, {P: r3.Vec{Y: 1}}, {P: r3.Vec{X: 1, Y: 1}},
	}}
	// Flat points on the z = 0 plane keep the triangulation two dimensional.
	src := &points{ps: []r3.Vec{{X: 2, Y: 3}}}
	p := foliated()
	p.MaxAttempts = 3

	res, err := NewBuilder(p, WithSeed(seed), WithSource(src)).
		Build(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationFailure
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Result.Dimension)
	require.NotNil(t, res)
	assert.Nil(t, res.Classification)
	assert.Equal(t, 1, res.Summary.Inserted)
	assert.Equal(t, 2, res.Summary.Duplicates)
}

func TestCancelledBuild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := random()
	res, err := NewBuilder(p).Build(ctx)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSphereSeedBuild(t *testing.T) {
	p := foliated()
	p.Seed = "Sphere"
	p.Timeslices = 3
	p.SeedPerShell = 4
	p.Simplices = 1

	res, err := NewBuilder(p).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Validation.Valid())
	assert.Equal(t, 1+4*(1+4+9), res.Validation.FiniteVertices)

	l := foliate.RadialShells{Spacing: 1}
	for v := range res.Triangulation.FiniteVertices() {
		assert.Equal(t, l.Label(v.Point()), v.Timeslice())
	}
	cl := res.Classification
	assert.Equal(t, res.Validation.FiniteCells, cl.Cells()+len(cl.Errors))
}

func TestValidateLowerDimension(t *testing.T) {
	tri := delaunay.New()
	for _, p := range []r3.Vec{{}, {X: 1}, {Y: 1}} {
		_, err := tri.Insert(p)
		require.NoError(t, err)
	}
	res, err := Validate(tri)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 2, res.Dimension)
	assert.False(t, res.Valid())
}

func TestVolumesMatch(t *testing.T) {
	assert.True(t, volumesMatch(1, 1+1e-9))
	assert.False(t, volumesMatch(1, 1.01))
	// Tiny triangulations are compared at their own scale.
	assert.True(t, volumesMatch(3e-10, 3e-10*(1+1e-9)))
	assert.False(t, volumesMatch(3e-10, 6e-10))
	assert.False(t, volumesMatch(0, 1e-9))
}

func TestSmallScaleBuild(t *testing.T) {
	var ps []sample.SeedPoint
	for _, p := range sample.MinimalSeedPoints {
		ps = append(ps, sample.SeedPoint{
			P: r3.Scale(1e-3, p), Timeslice: int(p.Z),
		})
	}
	res, err := NewBuilder(foliated(), WithSeed(&countingSeed{ps: ps})).
		Build(context.Background())
	require.NoError(t, err)

	v := res.Validation
	assert.True(t, v.Valid())
	assert.InEpsilon(t, 1e-9/3, v.Volume, 1e-9)
	assert.InEpsilon(t, v.HullVolume, v.Volume, hullTolerance)
	assert.InEpsilon(t, 1e-3*math.Sqrt(3)/2, v.MaxCircumradius, 1e-9)
}

func TestMinimalSeedGrowth(t *testing.T) {
	p := foliated()
	p.Simplices = 200
	p.Timeslices = 4
	p.Radius = 2

	res, err := NewBuilder(p).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Validation.Valid())
	assert.GreaterOrEqual(t, res.Validation.FiniteCells, 200)

	for v := range res.Triangulation.FiniteVertices() {
		z := v.Point().Z
		require.Equal(t, math.Round(z), z)
		assert.Equal(t, int(z), v.Timeslice())
	}

	cl := res.Classification
	assert.Equal(t, res.Validation.FiniteCells, cl.Cells()+len(cl.Errors))
	assert.Greater(t, cl.Cells(), len(cl.Errors))
}
