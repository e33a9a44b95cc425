package delaunay

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LocateType describes where a point lies relative to the cell returned by
// Locate.
type LocateType int

const (
	InCell LocateType = iota
	OnFacet
	OnEdge
	OnVertex
	OutsideConvexHull
	OutsideAffineHull
)

var locateNames = [...]string{
	"InCell", "OnFacet", "OnEdge", "OnVertex",
	"OutsideConvexHull", "OutsideAffineHull",
}

func (lt LocateType) String() string {
	if lt < 0 || int(lt) >= len(locateNames) {
		return "LocateType(?)"
	}
	return locateNames[lt]
}

// Conflict is the set of cells whose circumspheres contain a point, as
// computed by FindConflicts. It is only usable until the triangulation is
// next modified or FindConflicts is next called.
type Conflict struct {
	// Cells lists the conflicting cells. It is never empty.
	Cells []*Cell
	// Boundary is a facet of a conflicting cell whose neighbor is not in
	// conflict.
	Boundary Facet

	point r3.Vec
	gen   uint64
}

// Len returns the number of cells in the conflict region.
func (c *Conflict) Len() int { return len(c.Cells) }

func (t *Triangulation) inMark() uint64  { return 2 * t.gen }
func (t *Triangulation) outMark() uint64 { return 2*t.gen + 1 }

func checkPoint(p r3.Vec) error {
	for _, x := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrInvalidPoint
		}
	}
	return nil
}

// Insert adds p to the triangulation and returns its vertex. The vertex is
// labeled with the triangulation's LabelFunc. Inserting a point which is
// already present returns the existing vertex and changes nothing.
//
// Points inserted before the triangulation is three dimensional are placed
// when the first cell is built. Any of them which can't be placed at that
// point are removed again, and their errors are returned together with the
// vertex of p. The vertex is nil only if p itself was removed.
func (t *Triangulation) Insert(p r3.Vec) (*Vertex, error) {
	return t.insert(p, t.labeler)
}

// InsertWithTimeslice is identical to Insert, except that a newly created
// vertex is given the timeslice ts.
func (t *Triangulation) InsertWithTimeslice(p r3.Vec, ts int) (*Vertex, error) {
	return t.insert(p, func(r3.Vec) int { return ts })
}

func (t *Triangulation) insert(p r3.Vec, label LabelFunc) (*Vertex, error) {
	if err := checkPoint(p); err != nil {
		return nil, err
	}
	if v, ok := t.byPoint[p]; ok {
		return v, nil
	}

	if t.dim < 3 {
		v := t.newVertex(p, label)
		t.pending = append(t.pending, v)
		err := t.promote()
		if _, ok := t.byPoint[p]; !ok {
			return nil, err
		}
		return v, err
	}

	c, lt, li, _ := t.Locate(p)
	if lt == OnVertex {
		return c.v[li], nil
	}
	conflict, err := t.findConflicts(p, c, lt)
	if err != nil {
		return nil, err
	}
	v := t.newVertex(p, label)
	t.fillHole(v, conflict)
	return v, nil
}

// promote recomputes the dimension of the pending vertices and builds the
// first cells once four of them are affinely independent.
func (t *Triangulation) promote() error {
	ps := t.pending
	switch {
	case len(ps) == 0:
		t.dim = -1
		return nil
	case len(ps) == 1:
		t.dim = 0
		return nil
	}
	t.dim = 1

	a, b := ps[0].point, ps[1].point
	ci := -1
	for k := 2; k < len(ps); k++ {
		if !t.kernel.Collinear(a, b, ps[k].point) {
			ci = k
			break
		}
	}
	if ci < 0 {
		return nil
	}
	t.dim = 2

	c := ps[ci].point
	di := -1
	for k := ci + 1; k < len(ps); k++ {
		if t.kernel.Orient(a, b, c, ps[k].point) != 0 {
			di = k
			break
		}
	}
	if di < 0 {
		return nil
	}

	t.buildSimplex(ps[0], ps[1], ps[ci], ps[di])
	t.pending = nil
	var errs []error
	for k, v := range ps {
		if k == 0 || k == 1 || k == ci || k == di {
			continue
		}
		if err := t.placePending(v); err != nil {
			t.dropVertex(v)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// placePending inserts a vertex which was created before the triangulation
// became three dimensional.
func (t *Triangulation) placePending(v *Vertex) error {
	cell, lt, _, _ := t.Locate(v.point)
	if lt == OnVertex {
		// Only possible with an inexact kernel.
		return &DegenerateInsertionError{Point: v.point, Located: lt}
	}
	conflict, err := t.findConflicts(v.point, cell, lt)
	if err != nil {
		return err
	}
	t.fillHole(v, conflict)
	return nil
}

// buildSimplex creates the first finite cell and the four infinite cells
// around it.
func (t *Triangulation) buildSimplex(a, b, c, d *Vertex) {
	if t.kernel.Orient(a.point, b.point, c.point, d.point) < 0 {
		b, c = c, b
	}
	first := t.newCell(a, b, c, d)
	cells := []*Cell{first}
	for i := 0; i < 4; i++ {
		vs := first.v
		vs[i] = t.infinite
		// Swapping two facet vertices puts the interior on the negative side
		// of the hull facet.
		f := facetOrder[i]
		vs[f[0]], vs[f[1]] = vs[f[1]], vs[f[0]]
		cells = append(cells, t.newCell(vs[0], vs[1], vs[2], vs[3]))
	}
	link(cells)
	t.hint = first
	t.dim = 3
}

// orientFacet returns the side of the facet opposite vertex i that p lies
// on. The facet must be finite.
func (t *Triangulation) orientFacet(c *Cell, i int, p r3.Vec) int {
	f := facetOrder[i]
	return t.kernel.Orient(c.v[f[0]].point, c.v[f[1]].point, c.v[f[2]].point, p)
}

// Locate finds the cell containing p. For points inside the convex hull it
// returns a finite cell and reports whether p is in its interior, on a facet
// (li is the opposite vertex), on an edge (li and lj are its endpoints) or on
// a vertex (li). For points outside the hull it returns an infinite cell
// whose hull facet p lies strictly beyond, with li the index of the infinite
// vertex. Before the triangulation is three dimensional it returns
// OutsideAffineHull and a nil cell.
func (t *Triangulation) Locate(p r3.Vec) (c *Cell, lt LocateType, li, lj int) {
	if t.dim < 3 {
		return nil, OutsideAffineHull, -1, -1
	}

	c = t.startCell()
	var prev *Cell
	for steps := 0; steps <= t.liveCells; steps++ {
		var next *Cell
		zeros := [4]bool{}
		for k := 0; k < 4; k++ {
			// Rotating the starting facet keeps the walk from cycling.
			i := (k + steps) & 3
			if prev != nil && c.n[i] == prev {
				continue
			}
			o := t.orientFacet(c, i, p)
			if o < 0 {
				next = c.n[i]
				break
			}
			zeros[i] = o == 0
		}

		if next == nil {
			lt, li, lj = classifyZeros(zeros)
			return c, lt, li, lj
		}
		if inf := next.InfiniteIndex(); inf >= 0 {
			return next, OutsideConvexHull, inf, -1
		}
		prev, c = c, next
	}

	return t.locateScan(p)
}

func classifyZeros(zeros [4]bool) (lt LocateType, li, lj int) {
	var on, off []int
	for i, z := range zeros {
		if z {
			on = append(on, i)
		} else {
			off = append(off, i)
		}
	}
	switch len(on) {
	case 0:
		return InCell, -1, -1
	case 1:
		return OnFacet, on[0], -1
	case 2:
		return OnEdge, off[0], off[1]
	default:
		return OnVertex, off[0], -1
	}
}

// locateScan is a linear search used if the walk fails to terminate, which
// can only happen when an inexact kernel gives inconsistent answers.
func (t *Triangulation) locateScan(p r3.Vec) (*Cell, LocateType, int, int) {
	var outside *Cell
	for c := range t.AllCells() {
		if inf := c.InfiniteIndex(); inf >= 0 {
			if outside == nil && t.orientFacet(c, inf, p) > 0 {
				outside = c
			}
			continue
		}
		zeros, inside := [4]bool{}, true
		for i := 0; i < 4 && inside; i++ {
			o := t.orientFacet(c, i, p)
			inside = o >= 0
			zeros[i] = o == 0
		}
		if inside {
			lt, li, lj := classifyZeros(zeros)
			return c, lt, li, lj
		}
	}
	if outside != nil {
		return outside, OutsideConvexHull, outside.InfiniteIndex(), -1
	}
	// The kernel placed p nowhere, so fall back to floating point volumes.
	for c := range t.FiniteCells() {
		if c.Tetra().Contains(p) {
			return c, InCell, -1, -1
		}
	}
	return t.startCell(), InCell, -1, -1
}

func (t *Triangulation) startCell() *Cell {
	c := t.hint
	if c == nil || c.dead {
		for x := range t.AllCells() {
			c = x
			break
		}
	}
	if inf := c.InfiniteIndex(); inf >= 0 {
		c = c.n[inf]
	}
	return c
}

// inConflict returns true if p lies strictly inside the circumsphere of c.
// For an infinite cell the "circumsphere" is the half-space beyond its hull
// facet, together with the open circumdisk of the facet when p is coplanar
// with it.
func (t *Triangulation) inConflict(c *Cell, p r3.Vec) bool {
	inf := c.InfiniteIndex()
	if inf < 0 {
		v := c.v
		return t.kernel.InSphere(v[0].point, v[1].point, v[2].point, v[3].point, p) > 0
	}

	f := facetOrder[inf]
	a, b, d := c.v[f[0]].point, c.v[f[1]].point, c.v[f[2]].point
	switch t.kernel.Orient(a, b, d, p) {
	case 1:
		return true
	case 0:
		return t.kernel.InCircle(a, b, d, p) > 0
	}
	return false
}

// FindConflicts returns the conflict region of p, starting the search from
// the cell start, which must be in conflict with p. It returns a
// *DegenerateInsertionError if start is not, which means p cannot be
// inserted. The triangulation is not modified.
func (t *Triangulation) FindConflicts(p r3.Vec, start *Cell) (*Conflict, error) {
	if err := checkPoint(p); err != nil {
		return nil, err
	}
	if t.dim < 3 || start == nil || start.dead {
		return nil, ErrDimension
	}
	return t.findConflicts(p, start, InCell)
}

func (t *Triangulation) findConflicts(p r3.Vec, start *Cell, lt LocateType) (*Conflict, error) {
	t.gen++
	in, out := t.inMark(), t.outMark()

	if !t.inConflict(start, p) {
		start.mark = out
		return nil, &DegenerateInsertionError{Point: p, Located: lt}
	}

	conflict := &Conflict{point: p, gen: t.gen}
	start.mark = in
	stack := []*Cell{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		conflict.Cells = append(conflict.Cells, c)

		for i := 0; i < 4; i++ {
			n := c.n[i]
			if n.mark == in {
				continue
			}
			if n.mark == out || !t.inConflict(n, p) {
				n.mark = out
				if conflict.Boundary.Cell == nil {
					conflict.Boundary = Facet{Cell: c, Index: i}
				}
				continue
			}
			n.mark = in
			stack = append(stack, n)
		}
	}
	return conflict, nil
}

// InsertInHole inserts p by removing the cells of conflict and connecting p
// to every facet of the cavity's boundary. conflict must have been returned
// by FindConflicts for p, with no modification to the triangulation since.
func (t *Triangulation) InsertInHole(p r3.Vec, conflict *Conflict) (*Vertex, error) {
	if err := checkPoint(p); err != nil {
		return nil, err
	}
	if v, ok := t.byPoint[p]; ok {
		return v, nil
	}
	if conflict == nil || conflict.gen != t.gen || conflict.point != p ||
		len(conflict.Cells) == 0 {
		return nil, ErrStaleConflict
	}
	v := t.newVertex(p, t.labeler)
	t.fillHole(v, conflict)
	return v, nil
}

// fillHole replaces the conflict region with the star of v.
func (t *Triangulation) fillHole(v *Vertex, conflict *Conflict) {
	in := t.inMark()

	created := make([]*Cell, 0, 2*len(conflict.Cells)+4)
	for _, c := range conflict.Cells {
		for i := 0; i < 4; i++ {
			n := c.n[i]
			if n.mark == in {
				continue
			}
			vs := c.v
			vs[i] = v
			nc := t.newCell(vs[0], vs[1], vs[2], vs[3])
			nc.n[i] = n
			n.n[n.neighborIndex(c)] = nc
			created = append(created, nc)
		}
	}
	for _, c := range conflict.Cells {
		t.killCell(c)
	}
	link(created)

	t.hint = created[0]
	for _, c := range created {
		if !c.IsInfinite() {
			t.hint = c
			break
		}
	}
	t.gen++
	t.compact()
}
