package construct

// Filter decides whether a located point is inserted, given the number of
// cells in its conflict region.
type Filter interface {
	Accept(conflictCells int) bool
}

// ParityFilter accepts points whose conflict region has an even number of
// cells.
type ParityFilter struct{}

// Accept implements Filter.
func (ParityFilter) Accept(conflictCells int) bool { return conflictCells%2 == 0 }

// AcceptAll accepts every point.
type AcceptAll struct{}

// Accept implements Filter.
func (AcceptAll) Accept(conflictCells int) bool { return true }
