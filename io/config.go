package io

import (
	"fmt"
	"strings"

	"github.com/phil-mansfield/gocdt/construct"
	"github.com/phil-mansfield/gocdt/geom"
	"github.com/phil-mansfield/gocdt/sample"
)

const ExampleCDTFile = `[CDT]

#######################
# Required Parameters #
#######################

# Topology of the triangulated spacetime. Must be one of
# [ Spherical | Toroidal ]. Toroidal triangulations are not implemented yet.
Topology = Spherical

# The approximate number of simplices (tetrahedra) in the triangulation and
# the number of timeslices in its foliation.
Simplices = 64000
Timeslices = 256

# Coupling constants. Alpha is the negative squared geodesic length of
# timelike edges, K = 1/(8 pi G_Newton) and Lambda is K times the
# cosmological constant. In three dimensions |Alpha| must be at least 1/2.
Alpha = 1.1
K = 2.2
Lambda = 3.3

# Directory which output files will be written to.
Output = path/to/output/dir

#######################
# Optional Parameters #
#######################

# Only 3 is supported.
# Dimension = 3

# Number of passes of ergodic moves. Default is 10000.
# Passes = 10000

# Construction mode. Must be one of [ Foliated | Random ]. Foliated starts
# from a seed with a known foliation; Random grows a triangulation from
# points sampled uniformly in a ball of radius Radius and only keeps points
# whose conflict regions have an even number of cells. Default is Foliated.
# Mode = Foliated
# Radius = 1

# Seed for foliated mode. Must be one of [ Minimal | Sphere | File ]. There is
# no default. Minimal is the two tetrahedra (3,1) + (1,3) seed, Sphere places
# SeedPerShell k^2 points on each of the shells k = 1 ... Timeslices, and File
# reads columns "x y z" (or "x y z t" when SeedHasTimeslice is true) from
# SeedFile.
# Seed = Minimal
# SeedPerShell = 4
# SeedFile = path/to/seed.txt
# SeedHasTimeslice = false

# Foliated triangulations grow by adding points on their timeslices. For the
# Sphere seed these are the shells k * Spacing. Minimal and File seeds are
# sliced by the floor of z, so they grow on the planes z = -Timeslices/2, ...,
# Timeslices/2 - 1 inside a disc of radius Radius around the z axis (the
# disc radius is Timeslices if Radius isn't positive).
# Spacing = 1

# Geometric predicates. Must be one of [ Exact | Filtered | Inexact ].
# Default is Filtered, which is exact but much faster than Exact.
# Kernel = Filtered

# Construction gives up after MaxAttempts sampled points. Default is
# 100 * Simplices. If AllowPartial is true, an unfinished triangulation is
# written instead of being treated as an error.
# MaxAttempts = 6400000
# AllowPartial = false

# Seed for the random number generator.
# RandomSeed = 0

# Number of insertions between progress messages. 0 turns them off.
# ProgressInterval = 10000

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong. MetricsFile
# receives construction counters in the Prometheus text format.
# ProfileFile = prof.out
# LogFile = log.out
# MetricsFile = metrics.prom`

type SharedConfig struct {
	// Required
	Output string
	// Optional
	LogFile, ProfileFile, MetricsFile string
}

func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}
func (con *SharedConfig) ValidMetricsFile() bool {
	return con.MetricsFile != ""
}

type CDTConfig struct {
	SharedConfig

	// Required
	Topology              string
	Simplices, Timeslices int
	Alpha, K, Lambda      float64

	// Optional
	Dimension, Passes int
	Mode              string
	Radius            float64

	Seed             string
	SeedPerShell     int
	SeedFile         string
	SeedHasTimeslice bool
	Spacing          float64

	Kernel       string
	MaxAttempts  int
	AllowPartial bool
	RandomSeed   int

	ProgressInterval int
}

type CDTWrapper struct {
	CDT CDTConfig
}

func DefaultCDTWrapper() *CDTWrapper {
	con := CDTConfig{}
	con.Dimension = 3
	con.Passes = 10000
	con.Mode = "Foliated"
	con.Radius = 1
	con.SeedPerShell = 4
	con.Spacing = 1
	con.Kernel = "Filtered"
	con.ProgressInterval = 10000
	return &CDTWrapper{con}
}

func (con *CDTConfig) ValidTopology() bool {
	_, ok := parseTopology(con.Topology)
	return ok
}
func (con *CDTConfig) ValidSimplices() bool {
	return con.Simplices > 0
}
func (con *CDTConfig) ValidTimeslices() bool {
	return con.Timeslices > 0
}
func (con *CDTConfig) ValidPasses() bool {
	return con.Passes >= 0
}
func (con *CDTConfig) ValidMode() bool {
	_, ok := parseMode(con.Mode)
	return ok
}
func (con *CDTConfig) ValidRadius() bool {
	return con.Radius > 0
}
func (con *CDTConfig) ValidSeed() bool {
	for _, name := range sample.SeedNames {
		if strings.EqualFold(name, con.Seed) {
			return true
		}
	}
	return false
}
func (con *CDTConfig) ValidSeedFile() bool {
	return con.SeedFile != ""
}
func (con *CDTConfig) ValidKernel() bool {
	_, ok := geom.KernelByName(con.Kernel)
	return ok
}
func (con *CDTConfig) ValidMaxAttempts() bool {
	return con.MaxAttempts >= 0
}
func (con *CDTConfig) ValidRandomSeed() bool {
	return con.RandomSeed >= 0
}

func parseTopology(s string) (construct.Topology, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spherical":
		return construct.Spherical, true
	case "toroidal":
		return construct.Toroidal, true
	}
	return 0, false
}

func parseMode(s string) (construct.Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foliated":
		return construct.Foliated, true
	case "random":
		return construct.Random, true
	}
	return 0, false
}

// Params converts the configuration into construction parameters. It only
// fails on values which can't be parsed; everything else is checked by
// construct.Params.Check.
func (con *CDTConfig) Params() (construct.Params, error) {
	top, ok := parseTopology(con.Topology)
	if !ok {
		return construct.Params{}, fmt.Errorf(
			"Topology must be one of [Spherical | Toroidal], not '%s'.",
			con.Topology,
		)
	}
	mode, ok := parseMode(con.Mode)
	if !ok {
		return construct.Params{}, fmt.Errorf(
			"Mode must be one of [Foliated | Random], not '%s'.", con.Mode,
		)
	}

	seed := con.Seed
	for _, name := range sample.SeedNames {
		if strings.EqualFold(name, seed) {
			seed = name
		}
	}

	return construct.Params{
		Simplices:  con.Simplices,
		Timeslices: con.Timeslices,
		Dimension:  con.Dimension,
		Topology:   top,

		Alpha:  con.Alpha,
		K:      con.K,
		Lambda: con.Lambda,
		Passes: con.Passes,

		Mode:             mode,
		Seed:             seed,
		SeedFile:         con.SeedFile,
		SeedHasTimeslice: con.SeedHasTimeslice,
		SeedPerShell:     con.SeedPerShell,
		Spacing:          con.Spacing,

		Radius:      con.Radius,
		Kernel:      con.Kernel,
		MaxAttempts: con.MaxAttempts,
		RandomSeed:  uint64(con.RandomSeed),
	}, nil
}
