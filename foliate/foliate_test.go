package foliate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/delaunay"
)

func build(t *testing.T, l Labeler, ps ...r3.Vec) *delaunay.Triangulation {
	var opts []delaunay.Option
	if l != nil {
		opts = append(opts, delaunay.WithLabeler(Func(l)))
	}
	tri := delaunay.New(opts...)
	for _, p := range ps {
		_, err := tri.Insert(p)
		require.NoError(t, err)
	}
	require.NoError(t, tri.Validate())
	return tri
}

var minimal = []r3.Vec{
	{}, {X: 1}, {Y: 1}, {Z: 1}, {Z: -1},
}

func TestLabelFromCoordinate(t *testing.T) {
	assert.Equal(t, 0, LabelFromCoordinate(0))
	assert.Equal(t, 0, LabelFromCoordinate(0.999))
	assert.Equal(t, 1, LabelFromCoordinate(1))
	assert.Equal(t, -1, LabelFromCoordinate(-0.001))
	assert.Equal(t, -2, LabelFromCoordinate(-2))
}

func TestLabelers(t *testing.T) {
	p := r3.Vec{X: 0.5, Y: -1.5, Z: 2.25}
	assert.Equal(t, 0, AxisFloor{X}.Label(p))
	assert.Equal(t, -2, AxisFloor{Y}.Label(p))
	assert.Equal(t, 2, AxisFloor{Z}.Label(p))

	assert.Equal(t, 3, RadialShells{1}.Label(r3.Vec{X: 3.2}))
	assert.Equal(t, 2, RadialShells{1}.Label(r3.Vec{Y: -1.6}))
	assert.Equal(t, 4, RadialShells{0.5}.Label(r3.Vec{Z: 2}))
	assert.Equal(t, 0, RadialShells{}.Label(r3.Vec{}))
}

func TestClassifyMinimalSeed(t *testing.T) {
	tri := build(t, AxisFloor{Z}, minimal...)
	cl := Classify(tri)

	require.True(t, cl.Consistent())
	assert.Equal(t, 1, cl.ThreeOne)
	assert.Equal(t, 0, cl.TwoTwo)
	assert.Equal(t, 1, cl.OneThree)
	assert.Equal(t, 2, cl.Cells())
	assert.Len(t, cl.TimelikeEdges, 6)
	assert.Equal(t, 3, cl.SpacelikeEdges)

	for c := range tri.FiniteCells() {
		want := ThreeOne
		for _, v := range c.Vertices() {
			if v.Point().Z < 0 {
				want = OneThree
			}
		}
		assert.Equal(t, want, cl.Types[c.ID()])
	}

	payload := cl.Payload(tri)
	assert.Equal(t, 2, payload.FiniteCells)
	assert.Len(t, payload.TimelikeEdges, 6)
	for _, e := range payload.TimelikeEdges {
		assert.Less(t, e[0], e[1])
	}
}

func TestClassifyAfterFacetInsertion(t *testing.T) {
	ps := append(append([]r3.Vec{}, minimal...), r3.Vec{X: 1.0 / 3, Y: 1.0 / 3})
	tri := build(t, AxisFloor{Z}, ps...)
	cl := Classify(tri)

	require.True(t, cl.Consistent())
	assert.Equal(t, 3, cl.ThreeOne)
	assert.Equal(t, 3, cl.OneThree)
	assert.Len(t, cl.TimelikeEdges, 8)
}

func TestClassifyTwoTwo(t *testing.T) {
	tri := build(t, AxisFloor{Z},
		r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Z: 1}, r3.Vec{Y: 1, Z: 1},
	)
	cl := Classify(tri)
	require.True(t, cl.Consistent())
	assert.Equal(t, 1, cl.TwoTwo)
	assert.Len(t, cl.TimelikeEdges, 4)
	assert.Equal(t, 2, cl.SpacelikeEdges)
}

func TestClassificationErrors(t *testing.T) {
	// Unlabeled points all lie in timeslice 0.
	tri := build(t, nil, minimal...)
	cl := Classify(tri)
	assert.False(t, cl.Consistent())
	assert.Len(t, cl.Errors, 2)
	assert.Empty(t, cl.TimelikeEdges)
	assert.Equal(t, 0, cl.Cells())
	for _, err := range cl.Errors {
		assert.ErrorIs(t, err, ErrClassification)
		assert.Equal(t, []int{0}, err.Timeslices)
	}

	// Three timeslices.
	tri = build(t, AxisFloor{Z},
		r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Z: 1}, r3.Vec{Y: 1, Z: 2},
	)
	var c *delaunay.Cell
	for x := range tri.FiniteCells() {
		c = x
	}
	_, err := ClassifyCell(c)
	var cerr *ClassificationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []int{0, 1, 2}, cerr.Timeslices)

	// Two timeslices which aren't adjacent.
	tri = build(t, AxisFloor{Z},
		r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 2},
	)
	cl = Classify(tri)
	require.Len(t, cl.Errors, 1)
	assert.Equal(t, []int{0, 2}, cl.Errors[0].Timeslices)
}

func TestClassificationCompleteness(t *testing.T) {
	gen := rand.New(rand.NewSource(17))
	ps := make([]r3.Vec, 300)
	for i := range ps {
		ps[i] = r3.Vec{
			X: 4*gen.Float64() - 2, Y: 4*gen.Float64() - 2, Z: 4*gen.Float64() - 2,
		}
	}
	tri := build(t, RadialShells{1}, ps...)
	cl := Classify(tri)

	assert.Equal(t, tri.NumberOfFiniteCells(), cl.Cells()+len(cl.Errors))

	global := make(map[[2]int]bool)
	for _, e := range cl.TimelikeEdges {
		assert.False(t, global[e.Key()], "duplicate edge %v", e.Key())
		global[e.Key()] = true
	}

	union := make(map[[2]int]bool)
	for c := range tri.FiniteCells() {
		if _, ok := cl.Types[c.ID()]; !ok {
			continue
		}
		for _, e := range c.Edges() {
			if e.IsTimelike() {
				union[e.Key()] = true
			}
		}
	}
	assert.Equal(t, union, global)
}

func TestCellTypeString(t *testing.T) {
	assert.Equal(t, "(3,1)", ThreeOne.String())
	assert.Equal(t, "(2,2)", TwoTwo.String())
	assert.Equal(t, "(1,3)", OneThree.String())
}
