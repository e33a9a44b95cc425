/*package report receives progress events from triangulation construction and
forwards them to logs or metrics.
*/
package report

import (
	"log"
)

// Summary describes a finished construction run.
type Summary struct {
	Attempts    int
	Inserted    int
	Rejected    int
	Duplicates  int
	Degenerate  int
	FiniteCells int
	Target      int
	Converged   bool
}

// Reporter receives construction events. Implementations are called from
// the single goroutine doing the construction.
type Reporter interface {
	// Seeded is called once the seed points have been inserted.
	Seeded(vertices, finiteCells int)
	// Inserted is called after a point is added by replacing conflictCells
	// cells.
	Inserted(conflictCells, finiteCells int)
	// Rejected is called when the acceptance filter discards a point.
	Rejected(conflictCells int)
	// Duplicate is called when a sampled point is already a vertex.
	Duplicate()
	// Degenerate is called when a point couldn't be inserted.
	Degenerate(err error)
	// Finished is called once at the end of a run.
	Finished(s Summary)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Seeded(vertices, finiteCells int)        {}
func (Nop) Inserted(conflictCells, finiteCells int) {}
func (Nop) Rejected(conflictCells int)              {}
func (Nop) Duplicate()                              {}
func (Nop) Degenerate(err error)                    {}
func (Nop) Finished(s Summary)                      {}

// Multi forwards every event to each of its reporters in order.
type Multi []Reporter

func (m Multi) Seeded(vertices, finiteCells int) {
	for _, r := range m {
		r.Seeded(vertices, finiteCells)
	}
}

func (m Multi) Inserted(conflictCells, finiteCells int) {
	for _, r := range m {
		r.Inserted(conflictCells, finiteCells)
	}
}

func (m Multi) Rejected(conflictCells int) {
	for _, r := range m {
		r.Rejected(conflictCells)
	}
}

func (m Multi) Duplicate() {
	for _, r := range m {
		r.Duplicate()
	}
}

func (m Multi) Degenerate(err error) {
	for _, r := range m {
		r.Degenerate(err)
	}
}

func (m Multi) Finished(s Summary) {
	for _, r := range m {
		r.Finished(s)
	}
}

// Log writes events to a *log.Logger. Insertions are summarized every
// Every insertions; anomalies are always written.
type Log struct {
	Logger *log.Logger
	Every  int

	inserted int
}

// NewLog returns a Log which writes to the standard logger.
func NewLog(every int) *Log {
	return &Log{Logger: log.Default(), Every: every}
}

func (l *Log) Seeded(vertices, finiteCells int) {
	l.Logger.Printf("Initial seed has %d vertices and %d finite cells.",
		vertices, finiteCells)
}

func (l *Log) Inserted(conflictCells, finiteCells int) {
	l.inserted++
	if l.Every > 0 && l.inserted%l.Every == 0 {
		l.Logger.Printf("Inserted %d points, %d finite cells.",
			l.inserted, finiteCells)
	}
}

func (l *Log) Rejected(conflictCells int) {}

func (l *Log) Duplicate() {}

func (l *Log) Degenerate(err error) {
	l.Logger.Printf("Skipping point: %s", err.Error())
}

func (l *Log) Finished(s Summary) {
	l.Logger.Printf(
		"Finished after %d attempts: %d inserted, %d rejected, "+
			"%d duplicates, %d degenerate.",
		s.Attempts, s.Inserted, s.Rejected, s.Duplicates, s.Degenerate,
	)
	if !s.Converged {
		l.Logger.Printf("Only %d of %d finite cells were built.",
			s.FiniteCells, s.Target)
	}
}
