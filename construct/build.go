/*package construct builds foliated Delaunay triangulations: it checks a
run's parameters, seeds a triangulation, grows it to the requested number of
cells, validates the result and classifies its cells.
*/
package construct

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gocdt/delaunay"
	"github.com/phil-mansfield/gocdt/foliate"
	"github.com/phil-mansfield/gocdt/geom"
	"github.com/phil-mansfield/gocdt/report"
	"github.com/phil-mansfield/gocdt/sample"
)

const tracerName = "github.com/phil-mansfield/gocdt/construct"

// cancelCheckInterval is the number of attempts between context checks.
const cancelCheckInterval = 256

// RandomSeedPoints are the four corners of the tetrahedron random mode
// starts from.
var RandomSeedPoints = []r3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

// Result is the outcome of a construction run.
type Result struct {
	RunID         uuid.UUID
	Params        Params
	Triangulation *delaunay.Triangulation
	Summary       report.Summary
	Validation    ValidationResult
	// Classification is nil unless the triangulation passed validation.
	Classification *foliate.Classification
	Elapsed        time.Duration
}

// Builder runs a single construction.
type Builder struct {
	p        Params
	reporter report.Reporter
	source   sample.Source
	seed     sample.SeedStrategy
	filter   Filter
	labeler  foliate.Labeler
}

// Option configures a Builder.
type Option func(*Builder)

// WithReporter sends construction events to r.
func WithReporter(r report.Reporter) Option {
	return func(b *Builder) { b.reporter = r }
}

// WithSource replaces the point source used for growth.
func WithSource(s sample.Source) Option {
	return func(b *Builder) { b.source = s }
}

// WithSeed replaces the seed strategy used in foliated mode.
func WithSeed(s sample.SeedStrategy) Option {
	return func(b *Builder) { b.seed = s }
}

// WithFilter replaces the acceptance filter.
func WithFilter(f Filter) Option {
	return func(b *Builder) { b.filter = f }
}

// WithLabeler replaces the rule used to label grown points.
func WithLabeler(l foliate.Labeler) Option {
	return func(b *Builder) { b.labeler = l }
}

// NewBuilder returns a Builder for p. Parameters are checked by Build, not
// here.
func NewBuilder(p Params, opts ...Option) *Builder {
	b := &Builder{p: p, reporter: report.Nop{}}
	for _, opt := range opts {
		opt(b)
	}
	b.setDefaults()
	return b
}

// setDefaults fills in every collaborator not supplied as an option.
func (b *Builder) setDefaults() {
	p := &b.p
	gen := sample.NewRand(p.RandomSeed)

	if b.seed == nil && p.Mode == Foliated {
		switch p.Seed {
		case "Minimal":
			b.seed = sample.MinimalSeed{}
		case "Sphere":
			b.seed = sample.SphereSeed{
				Timeslices: p.Timeslices, PerShell: p.SeedPerShell,
				Spacing: p.spacing(), Rand: gen,
			}
		case "File":
			b.seed = sample.FileSeed{
				Path: p.SeedFile, HasTimeslice: p.SeedHasTimeslice,
			}
		}
	}

	if b.labeler == nil {
		switch {
		case p.Mode == Random:
			b.labeler = foliate.RadialShells{
				Spacing: p.Radius / float64(max(p.Timeslices, 1)),
			}
		case p.Seed == "Sphere":
			b.labeler = foliate.RadialShells{Spacing: p.spacing()}
		default:
			b.labeler = foliate.AxisFloor{Axis: foliate.Z}
		}
	}

	if b.source == nil {
		switch {
		case p.Mode == Random:
			b.source = &sample.InBall{Radius: p.Radius, Rand: gen}
		case p.Seed == "Sphere":
			b.source = &sample.Shells{
				Timeslices: p.Timeslices, Spacing: p.spacing(), Rand: gen,
			}
		default:
			// Planes of integer z match the AxisFloor labels.
			radius := p.Radius
			if radius <= 0 {
				radius = float64(p.Timeslices)
			}
			b.source = &sample.Slabs{
				First: -p.Timeslices / 2, Timeslices: p.Timeslices,
				Radius: radius, Rand: gen,
			}
		}
	}

	if b.filter == nil {
		if p.Mode == Random {
			b.filter = ParityFilter{}
		} else {
			b.filter = AcceptAll{}
		}
	}
}

// Build checks the parameters and constructs, validates and classifies a
// triangulation.
//
// A *ConfigurationError is returned with a nil Result. If the attempt
// ceiling is reached, the validated partial Result is returned along with a
// *NotConvergedError. A *ValidationFailure is returned with a Result that has
// no Classification.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "cdt.build", trace.WithAttributes(
		attribute.Int("simplices", b.p.Simplices),
		attribute.Int("timeslices", b.p.Timeslices),
		attribute.String("mode", b.p.Mode.String()),
	))
	defer span.End()

	if err := b.p.Check(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid configuration")
		return nil, err
	}

	k, _ := geom.KernelByName(b.p.Kernel)
	res := &Result{
		RunID:  uuid.New(),
		Params: b.p,
		Triangulation: delaunay.New(
			delaunay.WithKernel(k),
			delaunay.WithLabeler(foliate.Func(b.labeler)),
		),
	}
	span.SetAttributes(attribute.String("run_id", res.RunID.String()))

	if err := b.seedTriangulation(ctx, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seeding failed")
		return nil, err
	}

	growErr := b.grow(ctx, res)
	if growErr != nil && !errors.Is(growErr, ErrNotConverged) {
		span.RecordError(growErr)
		span.SetStatus(codes.Error, "growth failed")
		return nil, growErr
	}

	if err := b.validate(ctx, res); err != nil {
		res.Elapsed = time.Since(start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return res, err
	}

	b.classify(ctx, res)
	res.Elapsed = time.Since(start)

	if growErr != nil {
		span.RecordError(growErr)
		span.SetStatus(codes.Error, "not converged")
	}
	return res, growErr
}

func (b *Builder) seedTriangulation(ctx context.Context, res *Result) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "cdt.seed")
	defer span.End()

	t := res.Triangulation
	if b.p.Mode == Random {
		for _, p := range RandomSeedPoints {
			if _, err := t.Insert(p); err != nil {
				return fmt.Errorf("Could not insert seed point %v: %w", p, err)
			}
		}
	} else {
		ps, err := b.seed.Points()
		if err != nil {
			return err
		}
		for i, sp := range ps {
			if _, err := t.InsertWithTimeslice(sp.P, sp.Timeslice); err != nil {
				return fmt.Errorf("Could not insert point %d of the %s seed: %w",
					i, b.seed.Name(), err)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("vertices", t.NumberOfVertices()),
		attribute.Int("finite_cells", t.NumberOfFiniteCells()),
	)
	b.reporter.Seeded(t.NumberOfVertices(), t.NumberOfFiniteCells())
	return nil
}

// grow adds points until the triangulation has the requested number of
// finite cells or the attempt ceiling is reached.
func (b *Builder) grow(ctx context.Context, res *Result) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cdt.grow")
	defer span.End()

	t := res.Triangulation
	s := &res.Summary
	s.Target = b.p.Simplices
	maxAttempts := b.p.maxAttempts()

	var err error
	for t.NumberOfFiniteCells() < s.Target {
		if s.Attempts >= maxAttempts {
			err = &NotConvergedError{
				Attempts: s.Attempts, FiniteCells: t.NumberOfFiniteCells(),
				Target: s.Target,
			}
			break
		}
		if s.Attempts%cancelCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
		s.Attempts++

		if err = b.attempt(t, s, b.source.Next()); err != nil {
			break
		}
	}

	s.FiniteCells = t.NumberOfFiniteCells()
	s.Converged = s.FiniteCells >= s.Target
	span.SetAttributes(
		attribute.Int("attempts", s.Attempts),
		attribute.Int("inserted", s.Inserted),
		attribute.Int("rejected", s.Rejected),
		attribute.Int("finite_cells", s.FiniteCells),
	)
	b.reporter.Finished(*s)
	return err
}

// attempt tries to insert a single point. Only unrecoverable errors are
// returned.
func (b *Builder) attempt(t *delaunay.Triangulation, s *report.Summary, p r3.Vec) error {
	if t.Dimension() < 3 {
		if _, ok := t.VertexAt(p); ok {
			s.Duplicates++
			b.reporter.Duplicate()
			return nil
		}
		v, err := t.Insert(p)
		if v == nil {
			return b.skip(s, err)
		}
		s.Inserted++
		b.reporter.Inserted(0, t.NumberOfFiniteCells())
		if err != nil {
			// Building the first cell dropped an earlier point, so the
			// attempt leaves the vertex count unchanged.
			if err := b.skip(s, err); err != nil {
				return err
			}
			s.Inserted--
		}
		return nil
	}

	c, lt, _, _ := t.Locate(p)
	if lt == delaunay.OnVertex {
		s.Duplicates++
		b.reporter.Duplicate()
		return nil
	}

	conflict, err := t.FindConflicts(p, c)
	if err != nil {
		return b.skip(s, err)
	}
	if !b.filter.Accept(conflict.Len()) {
		s.Rejected++
		b.reporter.Rejected(conflict.Len())
		return nil
	}
	if _, err := t.InsertInHole(p, conflict); err != nil {
		return err
	}
	s.Inserted++
	b.reporter.Inserted(conflict.Len(), t.NumberOfFiniteCells())
	return nil
}

// skip records a point which couldn't be inserted. Degenerate and invalid
// points are resampled; anything else stops the run.
func (b *Builder) skip(s *report.Summary, err error) error {
	if errors.Is(err, delaunay.ErrDegenerateInsertion) ||
		errors.Is(err, delaunay.ErrInvalidPoint) {
		s.Degenerate++
		b.reporter.Degenerate(err)
		return nil
	}
	return err
}

func (b *Builder) validate(ctx context.Context, res *Result) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "cdt.validate")
	defer span.End()

	v, err := Validate(res.Triangulation)
	res.Validation = v
	span.SetAttributes(
		attribute.Int("dimension", v.Dimension),
		attribute.Bool("valid", v.DelaunayValid),
		attribute.Int("finite_cells", v.FiniteCells),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid triangulation")
	}
	return err
}

func (b *Builder) classify(ctx context.Context, res *Result) {
	_, span := otel.Tracer(tracerName).Start(ctx, "cdt.classify")
	defer span.End()

	cl := foliate.Classify(res.Triangulation)
	res.Classification = cl
	span.SetAttributes(
		attribute.Int("three_one", cl.ThreeOne),
		attribute.Int("two_two", cl.TwoTwo),
		attribute.Int("one_three", cl.OneThree),
		attribute.Int("timelike_edges", len(cl.TimelikeEdges)),
		attribute.Int("errors", len(cl.Errors)),
		attribute.Bool("consistent", cl.Consistent()),
	)
}
