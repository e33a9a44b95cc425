package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/gocdt/construct"
	"github.com/phil-mansfield/gocdt/foliate"
)

// TriFileName returns the name of the triangulation file for a run.
func TriFileName(res *construct.Result) string {
	return fmt.Sprintf("%s-%s.tri", res.Params.Topology, res.RunID)
}

// SummaryFileName returns the name of the summary file for a run.
func SummaryFileName(res *construct.Result) string {
	return fmt.Sprintf("%s.yaml", res.RunID)
}

// WriteTriangulation writes the finite vertices, finite cells and timelike
// edges of a run as text. Vertices are written as "id x y z t", cells as
// "id i j k l type", where i, j, k and l are vertex ids, and edges as "i j".
// Cells which couldn't be classified have type "?". Each block is preceded by
// a line giving its name and length.
func WriteTriangulation(w io.Writer, res *construct.Result) error {
	t := res.Triangulation
	cl := res.Classification
	if cl == nil {
		cl = foliate.Classify(t)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# run %s\n", res.RunID)
	fmt.Fprintf(bw, "# topology %s\n", res.Params.Topology)

	fmt.Fprintf(bw, "vertices %d\n", t.NumberOfVertices())
	for v := range t.FiniteVertices() {
		p := v.Point()
		fmt.Fprintf(bw, "%d %.17g %.17g %.17g %d\n",
			v.ID(), p.X, p.Y, p.Z, v.Timeslice())
	}

	fmt.Fprintf(bw, "cells %d\n", t.NumberOfFiniteCells())
	for c := range t.FiniteCells() {
		vs := c.Vertices()
		typ := "?"
		if ct, ok := cl.Types[c.ID()]; ok {
			typ = ct.String()
		}
		fmt.Fprintf(bw, "%d %d %d %d %d %s\n", c.ID(),
			vs[0].ID(), vs[1].ID(), vs[2].ID(), vs[3].ID(), typ)
	}

	fmt.Fprintf(bw, "timelike_edges %d\n", len(cl.TimelikeEdges))
	for _, e := range cl.TimelikeEdges {
		fmt.Fprintf(bw, "%d %d\n", e.A.ID(), e.B.ID())
	}
	return bw.Flush()
}

type ParamsSummary struct {
	Topology   string  `yaml:"topology"`
	Dimension  int     `yaml:"dimension"`
	Simplices  int     `yaml:"simplices"`
	Timeslices int     `yaml:"timeslices"`
	Alpha      float64 `yaml:"alpha"`
	K          float64 `yaml:"k"`
	Lambda     float64 `yaml:"lambda"`
	Passes     int     `yaml:"passes"`
	Mode       string  `yaml:"mode"`
	Seed       string  `yaml:"seed,omitempty"`
	Kernel     string  `yaml:"kernel,omitempty"`
	RandomSeed uint64  `yaml:"random_seed"`
}

type ConstructionSummary struct {
	Attempts   int  `yaml:"attempts"`
	Inserted   int  `yaml:"inserted"`
	Rejected   int  `yaml:"rejected"`
	Duplicates int  `yaml:"duplicates"`
	Degenerate int  `yaml:"degenerate"`
	Converged  bool `yaml:"converged"`
}

type ValidationSummary struct {
	Dimension       int     `yaml:"dimension"`
	Valid           bool    `yaml:"valid"`
	FiniteVertices  int     `yaml:"finite_vertices"`
	FiniteEdges     int     `yaml:"finite_edges"`
	FiniteFacets    int     `yaml:"finite_facets"`
	FiniteCells     int     `yaml:"finite_cells"`
	Volume          float64 `yaml:"volume"`
	MaxCircumradius float64 `yaml:"max_circumradius"`
	Slivers         int     `yaml:"slivers"`
}

type ClassificationSummary struct {
	ThreeOne       int  `yaml:"three_one"`
	TwoTwo         int  `yaml:"two_two"`
	OneThree       int  `yaml:"one_three"`
	Errors         int  `yaml:"errors"`
	TimelikeEdges  int  `yaml:"timelike_edges"`
	SpacelikeEdges int  `yaml:"spacelike_edges"`
	Consistent     bool `yaml:"consistent"`
}

// Summary is the machine-readable record of a run.
type Summary struct {
	RunID          string                 `yaml:"run_id"`
	User           string                 `yaml:"user,omitempty"`
	Hostname       string                 `yaml:"hostname,omitempty"`
	ElapsedSeconds float64                `yaml:"elapsed_seconds"`
	Params         ParamsSummary          `yaml:"params"`
	Construction   ConstructionSummary    `yaml:"construction"`
	Validation     ValidationSummary      `yaml:"validation"`
	Classification *ClassificationSummary `yaml:"classification,omitempty"`
}

// NewSummary summarizes a run.
func NewSummary(res *construct.Result, user, hostname string) *Summary {
	p, s, v := res.Params, res.Summary, res.Validation
	sum := &Summary{
		RunID:          res.RunID.String(),
		User:           user,
		Hostname:       hostname,
		ElapsedSeconds: res.Elapsed.Seconds(),
		Params: ParamsSummary{
			Topology: p.Topology.String(), Dimension: p.Dimension,
			Simplices: p.Simplices, Timeslices: p.Timeslices,
			Alpha: p.Alpha, K: p.K, Lambda: p.Lambda, Passes: p.Passes,
			Mode: p.Mode.String(), Seed: p.Seed, Kernel: p.Kernel,
			RandomSeed: p.RandomSeed,
		},
		Construction: ConstructionSummary{
			Attempts: s.Attempts, Inserted: s.Inserted, Rejected: s.Rejected,
			Duplicates: s.Duplicates, Degenerate: s.Degenerate,
			Converged: s.Converged,
		},
		Validation: ValidationSummary{
			Dimension: v.Dimension, Valid: v.Valid(),
			FiniteVertices: v.FiniteVertices, FiniteEdges: v.FiniteEdges,
			FiniteFacets: v.FiniteFacets, FiniteCells: v.FiniteCells,
			Volume: v.Volume, MaxCircumradius: v.MaxCircumradius,
			Slivers: v.Slivers,
		},
	}
	if p.Mode != construct.Foliated {
		sum.Params.Seed = ""
	}

	if cl := res.Classification; cl != nil {
		sum.Classification = &ClassificationSummary{
			ThreeOne: cl.ThreeOne, TwoTwo: cl.TwoTwo, OneThree: cl.OneThree,
			Errors:         len(cl.Errors),
			TimelikeEdges:  len(cl.TimelikeEdges),
			SpacelikeEdges: cl.SpacelikeEdges,
			Consistent:     cl.Consistent(),
		}
	}
	return sum
}

// WriteSummary writes s as YAML.
func WriteSummary(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// ReadSummary reads a summary written by WriteSummary.
func ReadSummary(r io.Reader) (*Summary, error) {
	s := &Summary{}
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteRun writes the triangulation and summary files of a run to dir and
// returns their paths.
func WriteRun(
	dir string, res *construct.Result, user, hostname string,
) (triFile, summaryFile string, err error) {
	if err = os.MkdirAll(dir, 0777); err != nil {
		return "", "", err
	}

	triFile = path.Join(dir, TriFileName(res))
	if err = writeFile(triFile, func(w io.Writer) error {
		return WriteTriangulation(w, res)
	}); err != nil {
		return "", "", err
	}

	summaryFile = path.Join(dir, SummaryFileName(res))
	if err = writeFile(summaryFile, func(w io.Writer) error {
		return WriteSummary(w, NewSummary(res, user, hostname))
	}); err != nil {
		return "", "", err
	}
	return triFile, summaryFile, nil
}

func writeFile(fname string, write func(io.Writer) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
