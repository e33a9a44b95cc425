/*package delaunay maintains an incremental three dimensional Delaunay
triangulation.

Points are inserted one at a time with the Bowyer-Watson algorithm: the cell
containing the point is located by a visibility walk, the connected region of
cells whose circumspheres contain the point (the conflict region) is collected,
and the resulting cavity is re-triangulated by joining the new vertex to every
facet on the cavity's boundary.

The unbounded exterior is represented by an explicit infinite vertex. Each
facet of the convex hull is shared by one finite cell and one infinite cell
(the hull facet joined to the infinite vertex), so every facet of every cell
always has exactly one neighbor. Until four affinely independent points have
been inserted, points are held as pending vertices and no cells exist.

A Triangulation has a single writer and is not safe for concurrent use. The
sequences returned by FiniteVertices, FiniteCells, FiniteEdges and
FiniteFacets must not be consumed while the triangulation is being modified.
*/
package delaunay

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/geom"
)

const infiniteID = 0

// facetOrder[i] lists the vertices of the facet opposite vertex i, ordered so
// that vertex i lies on the positive side of the facet whenever the cell
// itself is positively oriented.
var facetOrder = [4][3]int{
	{1, 3, 2},
	{0, 2, 3},
	{0, 3, 1},
	{0, 1, 2},
}

// edgeOrder lists the six vertex pairs of a cell.
var edgeOrder = [6][2]int{
	{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3},
}

// LabelFunc computes the timeslice of a newly created vertex.
type LabelFunc func(p r3.Vec) int

// Vertex is a point in the triangulation together with its timeslice. A
// vertex's timeslice is fixed when the vertex is created.
type Vertex struct {
	id        int
	point     r3.Vec
	timeslice int
	cell      *Cell
}

// ID returns a positive identifier which is unique within the triangulation.
// The infinite vertex has ID 0.
func (v *Vertex) ID() int { return v.id }

// Point returns the position of the vertex.
func (v *Vertex) Point() r3.Vec { return v.point }

// Timeslice returns the timeslice the vertex was labeled with at creation.
func (v *Vertex) Timeslice() int { return v.timeslice }

// IsInfinite returns true for the vertex at infinity.
func (v *Vertex) IsInfinite() bool { return v.id == infiniteID }

// Cell is a tetrahedron. Vertex i is opposite the facet shared with
// Neighbor(i).
type Cell struct {
	id   int
	v    [4]*Vertex
	n    [4]*Cell
	mark uint64
	dead bool
}

// ID returns an identifier which is unique within the triangulation.
func (c *Cell) ID() int { return c.id }

// Vertex returns the i-th vertex of the cell.
func (c *Cell) Vertex(i int) *Vertex { return c.v[i] }

// Vertices returns the four vertices of the cell.
func (c *Cell) Vertices() [4]*Vertex { return c.v }

// Neighbor returns the cell sharing the facet opposite vertex i.
func (c *Cell) Neighbor(i int) *Cell { return c.n[i] }

// InfiniteIndex returns the index of the infinite vertex or -1 if the cell
// is finite.
func (c *Cell) InfiniteIndex() int {
	for i := 0; i < 4; i++ {
		if c.v[i].IsInfinite() {
			return i
		}
	}
	return -1
}

// IsInfinite returns true if the cell is incident to the infinite vertex.
func (c *Cell) IsInfinite() bool { return c.InfiniteIndex() >= 0 }

// Index returns the index of v in the cell or -1 if v is not a vertex of it.
func (c *Cell) Index(v *Vertex) int {
	for i := 0; i < 4; i++ {
		if c.v[i] == v {
			return i
		}
	}
	return -1
}

// Edges returns the six edges of the cell.
func (c *Cell) Edges() [6]Edge {
	var es [6]Edge
	for i, e := range edgeOrder {
		es[i] = NewEdge(c.v[e[0]], c.v[e[1]])
	}
	return es
}

// Tetra returns the geometry of a finite cell. It panics for infinite cells.
func (c *Cell) Tetra() *geom.Tetra {
	if c.IsInfinite() {
		panic("Tetra called on an infinite cell.")
	}
	return geom.NewTetra(c.v[0].point, c.v[1].point, c.v[2].point, c.v[3].point)
}

func (c *Cell) neighborIndex(n *Cell) int {
	for i := 0; i < 4; i++ {
		if c.n[i] == n {
			return i
		}
	}
	return -1
}

// facetKey identifies the facet opposite vertex i by its sorted vertex IDs.
func (c *Cell) facetKey(i int) [3]int {
	f := facetOrder[i]
	k := [3]int{c.v[f[0]].id, c.v[f[1]].id, c.v[f[2]].id}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	if k[1] > k[2] {
		k[1], k[2] = k[2], k[1]
	}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	return k
}

// Facet is the triangle of Cell opposite the vertex at Index.
type Facet struct {
	Cell  *Cell
	Index int
}

// Vertices returns the facet's vertices, ordered so that the vertex at
// Index lies on their positive side.
func (f Facet) Vertices() [3]*Vertex {
	o := facetOrder[f.Index]
	return [3]*Vertex{f.Cell.v[o[0]], f.Cell.v[o[1]], f.Cell.v[o[2]]}
}

// Mirror returns the same triangle as seen from the neighboring cell.
func (f Facet) Mirror() Facet {
	n := f.Cell.n[f.Index]
	return Facet{Cell: n, Index: n.neighborIndex(f.Cell)}
}

// IsInfinite returns true if the facet is incident to the infinite vertex.
func (f Facet) IsInfinite() bool {
	i := f.Cell.InfiniteIndex()
	return i >= 0 && i != f.Index
}

// Edge is an unordered pair of vertices. A is always the vertex with the
// smaller ID.
type Edge struct {
	A, B *Vertex
}

// NewEdge returns the edge between a and b.
func NewEdge(a, b *Vertex) Edge {
	if a.id > b.id {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Key returns the IDs of the edge's endpoints.
func (e Edge) Key() [2]int { return [2]int{e.A.id, e.B.id} }

// IsTimelike returns true if the endpoints lie in different timeslices.
func (e Edge) IsTimelike() bool { return e.A.timeslice != e.B.timeslice }

// IsInfinite returns true if the edge is incident to the infinite vertex.
func (e Edge) IsInfinite() bool { return e.A.IsInfinite() || e.B.IsInfinite() }

// Triangulation is a three dimensional Delaunay triangulation.
type Triangulation struct {
	kernel   geom.Kernel
	labeler  LabelFunc
	infinite *Vertex

	vertices []*Vertex
	byPoint  map[r3.Vec]*Vertex
	pending  []*Vertex

	cells                   []*Cell
	liveCells, finite, dead int
	nextVertex, nextID      int

	dim  int
	hint *Cell
	gen  uint64
}

// Option configures a Triangulation.
type Option func(*Triangulation)

// WithKernel sets the predicates used by the triangulation. The default is
// geom.Filtered.
func WithKernel(k geom.Kernel) Option {
	return func(t *Triangulation) { t.kernel = k }
}

// WithLabeler sets the function used to assign timeslices to new vertices.
// Without one, vertices inserted by Insert are in timeslice 0.
func WithLabeler(f LabelFunc) Option {
	return func(t *Triangulation) { t.labeler = f }
}

// New returns an empty triangulation.
func New(opts ...Option) *Triangulation {
	t := &Triangulation{
		kernel:     geom.Filtered{},
		byPoint:    make(map[r3.Vec]*Vertex),
		nextVertex: infiniteID + 1,
		dim:        -1,
		gen:        1,
	}
	t.infinite = &Vertex{id: infiniteID}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Kernel returns the predicates used by the triangulation.
func (t *Triangulation) Kernel() geom.Kernel { return t.kernel }

// Dimension returns the affine dimension of the inserted points: -1 for an
// empty triangulation and 3 once four affinely independent points exist.
func (t *Triangulation) Dimension() int { return t.dim }

// NumberOfVertices returns the number of finite vertices.
func (t *Triangulation) NumberOfVertices() int { return len(t.vertices) }

// NumberOfCells returns the number of cells, including infinite cells.
func (t *Triangulation) NumberOfCells() int { return t.liveCells }

// NumberOfFiniteCells returns the number of cells not incident to the
// infinite vertex.
func (t *Triangulation) NumberOfFiniteCells() int { return t.finite }

// VertexAt returns the vertex at exactly the given position.
func (t *Triangulation) VertexAt(p r3.Vec) (*Vertex, bool) {
	v, ok := t.byPoint[p]
	return v, ok
}

// FiniteVertices returns the finite vertices in insertion order.
func (t *Triangulation) FiniteVertices() iter.Seq[*Vertex] {
	return func(yield func(*Vertex) bool) {
		for _, v := range t.vertices {
			if !yield(v) {
				return
			}
		}
	}
}

// AllCells returns every live cell, finite or infinite, in creation order.
func (t *Triangulation) AllCells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, c := range t.cells {
			if c.dead {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// FiniteCells returns the cells not incident to the infinite vertex in
// creation order.
func (t *Triangulation) FiniteCells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for c := range t.AllCells() {
			if c.IsInfinite() {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// FiniteEdges returns each edge between two finite vertices once.
func (t *Triangulation) FiniteEdges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		seen := make(map[[2]int]bool)
		for c := range t.AllCells() {
			for _, e := range c.Edges() {
				if e.IsInfinite() || seen[e.Key()] {
					continue
				}
				seen[e.Key()] = true
				if !yield(e) {
					return
				}
			}
		}
	}
}

// FiniteFacets returns each triangle between three finite vertices once.
// Hull facets are reported from their finite cell.
func (t *Triangulation) FiniteFacets() iter.Seq[Facet] {
	return func(yield func(Facet) bool) {
		for c := range t.FiniteCells() {
			for i := 0; i < 4; i++ {
				if n := c.n[i]; !n.IsInfinite() && n.id < c.id {
					continue
				}
				if !yield(Facet{Cell: c, Index: i}) {
					return
				}
			}
		}
	}
}

// Counts holds the sizes of a triangulation. Only finite simplices are
// counted, except for InfiniteCells.
type Counts struct {
	Vertices, Edges, Facets, Cells int
	InfiniteCells                  int
}

// Counts returns the number of finite vertices, edges, facets and cells.
func (t *Triangulation) Counts() Counts {
	var n Counts
	n.Vertices = len(t.vertices)
	for range t.FiniteEdges() {
		n.Edges++
	}
	for range t.FiniteFacets() {
		n.Facets++
	}
	for c := range t.AllCells() {
		if c.IsInfinite() {
			n.InfiniteCells++
		} else {
			n.Cells++
		}
	}
	return n
}

func (t *Triangulation) newVertex(p r3.Vec, label LabelFunc) *Vertex {
	v := &Vertex{id: t.nextVertex, point: p}
	if label != nil {
		v.timeslice = label(p)
	}
	t.nextVertex++
	t.vertices = append(t.vertices, v)
	t.byPoint[p] = v
	return v
}

// dropVertex forgets a vertex which never became part of a cell.
func (t *Triangulation) dropVertex(v *Vertex) {
	delete(t.byPoint, v.point)
	for i, u := range t.vertices {
		if u == v {
			t.vertices = append(t.vertices[:i], t.vertices[i+1:]...)
			return
		}
	}
}

func (t *Triangulation) newCell(v0, v1, v2, v3 *Vertex) *Cell {
	c := &Cell{id: t.nextID, v: [4]*Vertex{v0, v1, v2, v3}}
	t.nextID++
	t.cells = append(t.cells, c)
	t.liveCells++
	if !c.IsInfinite() {
		t.finite++
	}
	for _, v := range c.v {
		v.cell = c
	}
	return c
}

func (t *Triangulation) killCell(c *Cell) {
	c.dead = true
	t.liveCells--
	if !c.IsInfinite() {
		t.finite--
	}
	t.dead++
}

// compact drops dead cells from the cell list once they outnumber live ones.
func (t *Triangulation) compact() {
	if t.dead <= t.liveCells {
		return
	}
	live := t.cells[:0]
	for _, c := range t.cells {
		if !c.dead {
			live = append(live, c)
		}
	}
	for i := len(live); i < len(t.cells); i++ {
		t.cells[i] = nil
	}
	t.cells = live
	t.dead = 0
}

// link connects every unset neighbor pointer among cells to the other cell
// in the list sharing that facet.
func link(cells []*Cell) {
	type half struct {
		c *Cell
		i int
	}
	open := make(map[[3]int]half)
	for _, c := range cells {
		for i := 0; i < 4; i++ {
			if c.n[i] != nil {
				continue
			}
			key := c.facetKey(i)
			if h, ok := open[key]; ok {
				c.n[i], h.c.n[h.i] = h.c, c
				delete(open, key)
			} else {
				open[key] = half{c, i}
			}
		}
	}
}
