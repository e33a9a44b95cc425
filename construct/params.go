package construct

import (
	"fmt"
	"math"
	"strings"

	"github.com/phil-mansfield/gocdt/geom"
	"github.com/phil-mansfield/gocdt/sample"
)

// Topology is the global topology of the triangulated spacetime.
type Topology int

const (
	Spherical Topology = iota
	Toroidal
)

func (t Topology) String() string {
	switch t {
	case Spherical:
		return "Spherical"
	case Toroidal:
		return "Toroidal"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// Mode selects how points are added to the triangulation.
type Mode int

const (
	// Foliated starts from a seed with a known foliation and grows it with
	// points on timeslice shells. Every located point is inserted.
	Foliated Mode = iota
	// Random starts from a single tetrahedron and grows it with points
	// sampled uniformly in a ball, admitted by the parity filter.
	Random
)

func (m Mode) String() string {
	switch m {
	case Foliated:
		return "Foliated"
	case Random:
		return "Random"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MinAlpha is the smallest |Alpha| for which the triangle inequalities hold
// in three dimensions.
const MinAlpha = 0.5

// Params fully specifies a construction run.
type Params struct {
	Simplices  int
	Timeslices int
	Dimension  int
	Topology   Topology

	// Couplings and pass count for the move-acceptance step. Only Alpha is
	// checked here.
	Alpha, K, Lambda float64
	Passes           int

	Mode Mode
	// Seed names the seed strategy in foliated mode: one of
	// sample.SeedNames.
	Seed             string
	SeedFile         string
	SeedHasTimeslice bool
	SeedPerShell     int
	// Spacing is the distance between timeslice shells.
	Spacing float64

	// Radius of the sampling ball in random mode.
	Radius float64
	Kernel string

	// MaxAttempts bounds the number of sampled points. Zero means
	// DefaultAttemptsPerSimplex * Simplices.
	MaxAttempts int
	RandomSeed  uint64
}

// DefaultAttemptsPerSimplex sets the attempt ceiling when MaxAttempts is 0.
const DefaultAttemptsPerSimplex = 100

// Check returns a *ConfigurationError for the first parameter which makes
// the run impossible.
func (p *Params) Check() error {
	switch {
	case p.Dimension != 3:
		return &ConfigurationError{"Dimension", p.Dimension,
			"only three dimensional triangulations are supported"}
	case p.Topology == Toroidal:
		return &ConfigurationError{"Topology", p.Topology,
			"toroidal triangulations are not implemented"}
	case p.Topology != Spherical:
		return &ConfigurationError{"Topology", p.Topology, "unknown topology"}
	case math.Abs(p.Alpha) < MinAlpha || math.IsNaN(p.Alpha):
		return &ConfigurationError{"Alpha", p.Alpha,
			fmt.Sprintf("|Alpha| must be at least %g for the triangle "+
				"inequalities to hold", MinAlpha)}
	case p.Simplices <= 0:
		return &ConfigurationError{"Simplices", p.Simplices, "must be positive"}
	case p.Timeslices <= 0:
		return &ConfigurationError{"Timeslices", p.Timeslices, "must be positive"}
	case p.Passes < 0:
		return &ConfigurationError{"Passes", p.Passes, "must be non-negative"}
	case p.MaxAttempts < 0:
		return &ConfigurationError{"MaxAttempts", p.MaxAttempts,
			"must be non-negative"}
	}

	if _, ok := geom.KernelByName(p.Kernel); !ok {
		return &ConfigurationError{"Kernel", p.Kernel, fmt.Sprintf(
			"must be one of %s", strings.Join(geom.KernelNames, ", "))}
	}

	switch p.Mode {
	case Random:
		if !(p.Radius > 0) {
			return &ConfigurationError{"Radius", p.Radius, "must be positive"}
		}
	case Foliated:
		if !validSeed(p.Seed) {
			return &ConfigurationError{"Seed", p.Seed, fmt.Sprintf(
				"must be one of %s", strings.Join(sample.SeedNames, ", "))}
		}
		if p.Seed == "File" && p.SeedFile == "" {
			return &ConfigurationError{"SeedFile", p.SeedFile,
				"must be set for the File seed"}
		}
		if p.Spacing < 0 {
			return &ConfigurationError{"Spacing", p.Spacing,
				"must be non-negative"}
		}
	default:
		return &ConfigurationError{"Mode", p.Mode, "unknown mode"}
	}
	return nil
}

func validSeed(name string) bool {
	for _, s := range sample.SeedNames {
		if s == name {
			return true
		}
	}
	return false
}

func (p *Params) maxAttempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return DefaultAttemptsPerSimplex * p.Simplices
}

func (p *Params) spacing() float64 {
	if p.Spacing > 0 {
		return p.Spacing
	}
	return 1
}
