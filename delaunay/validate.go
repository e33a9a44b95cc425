package delaunay

// Validate checks the combinatorial and geometric invariants of the
// triangulation and returns an error wrapping ErrInvalid describing the first
// violation found. It checks that
//
//   - neighbor relations are mutual and agree on the shared facet,
//   - no cell has more than one infinite vertex or a repeated vertex,
//   - finite cells are positively oriented,
//   - no vertex lies strictly inside the circumsphere of a neighboring cell,
//   - the convex hull is convex,
//   - every vertex points at a live cell containing it, and
//   - the Euler characteristic of the closed triangulation is zero.
func (t *Triangulation) Validate() error {
	if t.dim < 3 {
		if t.liveCells != 0 {
			return invalidf("%d cells in a %d dimensional triangulation",
				t.liveCells, t.dim)
		}
		return nil
	}
	if len(t.pending) > 0 {
		return invalidf("%d vertices are still pending", len(t.pending))
	}

	for c := range t.AllCells() {
		if err := t.validateCell(c); err != nil {
			return err
		}
	}

	for _, v := range append([]*Vertex{t.infinite}, t.vertices...) {
		switch {
		case v.cell == nil:
			return invalidf("vertex %d has no incident cell", v.id)
		case v.cell.dead:
			return invalidf("vertex %d points to deleted cell %d",
				v.id, v.cell.id)
		case v.cell.Index(v) < 0:
			return invalidf("vertex %d is not a vertex of its cell %d",
				v.id, v.cell.id)
		}
	}

	edges := make(map[[2]int]bool)
	for c := range t.AllCells() {
		for _, e := range c.Edges() {
			edges[e.Key()] = true
		}
	}
	// V - E + F - C for a closed 3-manifold, with F = 2C.
	chi := len(t.vertices) + 1 - len(edges) + t.liveCells
	if chi != 0 {
		return invalidf("Euler characteristic is %d", chi)
	}
	return nil
}

// IsValid returns true if Validate finds no errors.
func (t *Triangulation) IsValid() bool { return t.Validate() == nil }

func (t *Triangulation) validateCell(c *Cell) error {
	inf := 0
	for i := 0; i < 4; i++ {
		if c.v[i] == nil {
			return invalidf("cell %d is missing vertex %d", c.id, i)
		}
		if c.v[i].IsInfinite() {
			inf++
		}
		for j := 0; j < i; j++ {
			if c.v[i] == c.v[j] {
				return invalidf("cell %d repeats vertex %d", c.id, c.v[i].id)
			}
		}
	}
	if inf > 1 {
		return invalidf("cell %d has %d infinite vertices", c.id, inf)
	}

	for i := 0; i < 4; i++ {
		n := c.n[i]
		if n == nil {
			return invalidf("facet %d of cell %d has no neighbor", i, c.id)
		}
		if n.dead {
			return invalidf("cell %d neighbors deleted cell %d", c.id, n.id)
		}
		j := n.neighborIndex(c)
		if j < 0 {
			return invalidf("cell %d neighbors cell %d, but not vice versa",
				c.id, n.id)
		}
		if c.facetKey(i) != n.facetKey(j) {
			return invalidf("cells %d and %d disagree on their shared facet",
				c.id, n.id)
		}
	}

	k := t.kernel
	if ii := c.InfiniteIndex(); ii >= 0 {
		f := facetOrder[ii]
		a, b, d := c.v[f[0]].point, c.v[f[1]].point, c.v[f[2]].point
		for i := 0; i < 4; i++ {
			if i == ii {
				continue
			}
			n := c.n[i]
			opp := n.v[n.neighborIndex(c)]
			if !opp.IsInfinite() && k.Orient(a, b, d, opp.point) > 0 {
				return invalidf("convex hull is not convex at cell %d", c.id)
			}
		}
		return nil
	}

	p := c.v
	if k.Orient(p[0].point, p[1].point, p[2].point, p[3].point) <= 0 {
		return invalidf("cell %d is not positively oriented", c.id)
	}
	for i := 0; i < 4; i++ {
		n := c.n[i]
		opp := n.v[n.neighborIndex(c)]
		if opp.IsInfinite() {
			continue
		}
		if k.InSphere(p[0].point, p[1].point, p[2].point, p[3].point,
			opp.point) > 0 {
			return invalidf("vertex %d is inside the circumsphere of cell %d",
				opp.id, c.id)
		}
	}
	return nil
}
