package delaunay

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrDegenerateInsertion is wrapped by every *DegenerateInsertionError.
	ErrDegenerateInsertion = errors.New("delaunay: degenerate insertion")
	// ErrInvalidPoint is returned for points with NaN or infinite coordinates.
	ErrInvalidPoint = errors.New("delaunay: point has non-finite coordinates")
	// ErrStaleConflict is returned by InsertInHole when the triangulation
	// changed after the conflict region was computed.
	ErrStaleConflict = errors.New("delaunay: stale conflict region")
	// ErrDimension is returned by operations which need cells before four
	// affinely independent points have been inserted.
	ErrDimension = errors.New("delaunay: triangulation is not three dimensional")
	// ErrInvalid is wrapped by every error returned from Validate.
	ErrInvalid = errors.New("delaunay: invalid triangulation")
)

// DegenerateInsertionError reports a point whose conflict region is empty.
// The triangulation is unchanged.
type DegenerateInsertionError struct {
	Point   r3.Vec
	Located LocateType
}

func (e *DegenerateInsertionError) Error() string {
	return fmt.Sprintf(
		"delaunay: empty conflict region for point (%g, %g, %g), located %s",
		e.Point.X, e.Point.Y, e.Point.Z, e.Located,
	)
}

func (e *DegenerateInsertionError) Unwrap() error { return ErrDegenerateInsertion }

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
