package foliate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/phil-mansfield/gocdt/delaunay"
)

// CellType is the causal type of a cell: the number of its vertices in the
// lower and upper of the two timeslices it spans.
type CellType int

const (
	ThreeOne CellType = iota
	TwoTwo
	OneThree
)

func (ct CellType) String() string {
	switch ct {
	case ThreeOne:
		return "(3,1)"
	case TwoTwo:
		return "(2,2)"
	case OneThree:
		return "(1,3)"
	}
	return fmt.Sprintf("CellType(%d)", int(ct))
}

// ErrClassification is wrapped by every *ClassificationError.
var ErrClassification = errors.New("foliate: cell is not foliated")

// ClassificationError reports a finite cell which doesn't span exactly two
// adjacent timeslices.
type ClassificationError struct {
	CellID     int
	Timeslices []int
}

func (e *ClassificationError) Error() string {
	if len(e.Timeslices) == 1 {
		return fmt.Sprintf("foliate: cell %d lies entirely in timeslice %d",
			e.CellID, e.Timeslices[0])
	}
	return fmt.Sprintf("foliate: cell %d spans timeslices %v", e.CellID, e.Timeslices)
}

func (e *ClassificationError) Unwrap() error { return ErrClassification }

// ClassifyCell returns the causal type of a finite cell. The cell's vertices
// must lie in exactly two timeslices, t and t + 1.
func ClassifyCell(c *delaunay.Cell) (CellType, error) {
	if c.IsInfinite() {
		panic(fmt.Sprintf("Cell %d is infinite.", c.ID()))
	}

	counts := make(map[int]int, 4)
	for _, v := range c.Vertices() {
		counts[v.Timeslice()]++
	}
	slices := make([]int, 0, len(counts))
	for ts := range counts {
		slices = append(slices, ts)
	}
	sort.Ints(slices)

	if len(slices) != 2 || slices[1]-slices[0] != 1 {
		return 0, &ClassificationError{CellID: c.ID(), Timeslices: slices}
	}

	switch counts[slices[0]] {
	case 3:
		return ThreeOne, nil
	case 2:
		return TwoTwo, nil
	default:
		return OneThree, nil
	}
}

// Classification summarizes the causal structure of a triangulation.
type Classification struct {
	// Types maps the ID of every classified finite cell to its type.
	Types                      map[int]CellType
	ThreeOne, TwoTwo, OneThree int

	// Errors holds one error for each finite cell that couldn't be
	// classified. Those cells contribute no edges.
	Errors []*ClassificationError

	// TimelikeEdges is every edge of a classified cell whose endpoints are
	// in different timeslices, ordered by endpoint IDs.
	TimelikeEdges  []delaunay.Edge
	SpacelikeEdges int
}

// Cells returns the number of classified cells.
func (cl *Classification) Cells() int {
	return cl.ThreeOne + cl.TwoTwo + cl.OneThree
}

// Consistent returns true if every finite cell was classified.
func (cl *Classification) Consistent() bool { return len(cl.Errors) == 0 }

// Classify classifies every finite cell of t and collects its timelike
// edges. Cells that can't be classified are recorded in Errors rather than
// stopping the pass.
func Classify(t *delaunay.Triangulation) *Classification {
	cl := &Classification{Types: make(map[int]CellType)}
	seen := make(map[[2]int]bool)

	for c := range t.FiniteCells() {
		ct, err := ClassifyCell(c)
		if err != nil {
			var cerr *ClassificationError
			errors.As(err, &cerr)
			cl.Errors = append(cl.Errors, cerr)
			continue
		}

		cl.Types[c.ID()] = ct
		switch ct {
		case ThreeOne:
			cl.ThreeOne++
		case TwoTwo:
			cl.TwoTwo++
		case OneThree:
			cl.OneThree++
		}

		for _, e := range c.Edges() {
			if seen[e.Key()] {
				continue
			}
			seen[e.Key()] = true
			if e.IsTimelike() {
				cl.TimelikeEdges = append(cl.TimelikeEdges, e)
			} else {
				cl.SpacelikeEdges++
			}
		}
	}

	sort.Slice(cl.TimelikeEdges, func(i, j int) bool {
		ki, kj := cl.TimelikeEdges[i].Key(), cl.TimelikeEdges[j].Key()
		if ki[0] != kj[0] {
			return ki[0] < kj[0]
		}
		return ki[1] < kj[1]
	})
	return cl
}

// MovePayload is the input needed by a Monte Carlo move-acceptance step.
type MovePayload struct {
	TimelikeEdges [][2]int
	FiniteCells   int
}

// Payload returns the move payload for a classified triangulation.
func (cl *Classification) Payload(t *delaunay.Triangulation) MovePayload {
	p := MovePayload{
		TimelikeEdges: make([][2]int, len(cl.TimelikeEdges)),
		FiniteCells:   t.NumberOfFiniteCells(),
	}
	for i, e := range cl.TimelikeEdges {
		p.TimelikeEdges[i] = e.Key()
	}
	return p
}
