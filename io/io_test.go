package io

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gocdt/construct"
)

func readExample(t *testing.T, replace ...string) *CDTConfig {
	text := strings.NewReplacer(replace...).Replace(ExampleCDTFile)
	wrap := DefaultCDTWrapper()
	require.NoError(t, gcfg.ReadStringInto(wrap, text))
	return &wrap.CDT
}

func TestExampleCDTFile(t *testing.T) {
	con := readExample(t, "# Seed = Minimal", "Seed = Minimal")

	assert.Equal(t, "Spherical", con.Topology)
	assert.Equal(t, 64000, con.Simplices)
	assert.Equal(t, 256, con.Timeslices)
	assert.Equal(t, 1.1, con.Alpha)
	assert.Equal(t, 2.2, con.K)
	assert.Equal(t, 3.3, con.Lambda)
	assert.Equal(t, "path/to/output/dir", con.Output)
	assert.Equal(t, "Minimal", con.Seed)

	// Defaults survive for everything left commented out.
	assert.Equal(t, 3, con.Dimension)
	assert.Equal(t, 10000, con.Passes)
	assert.Equal(t, "Foliated", con.Mode)
	assert.Equal(t, "Filtered", con.Kernel)
	assert.Equal(t, "", con.LogFile)

	assert.True(t, con.ValidOutput())
	assert.True(t, con.ValidTopology())
	assert.True(t, con.ValidSimplices())
	assert.True(t, con.ValidTimeslices())
	assert.True(t, con.ValidMode())
	assert.True(t, con.ValidSeed())
	assert.True(t, con.ValidKernel())
	assert.False(t, con.ValidSeedFile())
	assert.False(t, con.ValidLogFile())
	assert.False(t, con.ValidMetricsFile())

	p, err := con.Params()
	require.NoError(t, err)
	assert.NoError(t, p.Check())
	assert.Equal(t, construct.Spherical, p.Topology)
	assert.Equal(t, construct.Foliated, p.Mode)
	assert.Equal(t, "Minimal", p.Seed)
}

func TestRandomConfig(t *testing.T) {
	con := readExample(t,
		"# Mode = Foliated", "Mode = random",
		"# Radius = 1", "Radius = 2.5",
		"# RandomSeed = 0", "RandomSeed = 12",
		"# AllowPartial = false", "AllowPartial = true",
	)
	assert.True(t, con.AllowPartial)
	assert.False(t, con.ValidSeed())

	p, err := con.Params()
	require.NoError(t, err)
	assert.NoError(t, p.Check())
	assert.Equal(t, construct.Random, p.Mode)
	assert.Equal(t, 2.5, p.Radius)
	assert.Equal(t, uint64(12), p.RandomSeed)
}

func TestInvalidConfig(t *testing.T) {
	con := &DefaultCDTWrapper().CDT
	assert.False(t, con.ValidOutput())
	assert.False(t, con.ValidTopology())
	assert.False(t, con.ValidSimplices())
	assert.False(t, con.ValidTimeslices())

	con.Topology = "Klein"
	_, err := con.Params()
	assert.Error(t, err)

	con.Topology = "toroidal"
	con.Mode = "Annealed"
	assert.False(t, con.ValidMode())
	_, err = con.Params()
	assert.Error(t, err)

	con.Mode = "Foliated"
	con.Seed = "sphere"
	assert.True(t, con.ValidSeed())
	p, err := con.Params()
	require.NoError(t, err)
	assert.Equal(t, "Sphere", p.Seed)
	assert.Equal(t, construct.Toroidal, p.Topology)

	con.Kernel = "Approximate"
	assert.False(t, con.ValidKernel())
	con.RandomSeed = -1
	assert.False(t, con.ValidRandomSeed())

	wrap := DefaultCDTWrapper()
	err = gcfg.ReadStringInto(wrap, "[CDT]\nTemperature = 3\n")
	assert.Error(t, err)
}

func minimalRun(t *testing.T) *construct.Result {
	p := construct.Params{
		Simplices: 2, Timeslices: 2, Dimension: 3, Topology: construct.Spherical,
		Alpha: 1.1, K: 2.2, Lambda: 3.3, Passes: 10,
		Mode: construct.Foliated, Seed: "Minimal",
	}
	res, err := construct.NewBuilder(p).Build(context.Background())
	require.NoError(t, err)
	return res
}

func TestWriteTriangulation(t *testing.T) {
	res := minimalRun(t)
	buf := &bytes.Buffer{}
	require.NoError(t, WriteTriangulation(buf, res))

	blocks := map[string][]string{}
	block := ""
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && strings.Trim(fields[0], "_abcdefghijklmnopqrstuvwxyz") == "" {
			block = fields[0]
			blocks[block] = nil
			continue
		}
		blocks[block] = append(blocks[block], line)
	}

	require.Len(t, blocks["vertices"], 5)
	require.Len(t, blocks["cells"], 2)
	require.Len(t, blocks["timelike_edges"], 6)

	types := []string{}
	for _, line := range blocks["cells"] {
		fields := strings.Fields(line)
		require.Len(t, fields, 6)
		types = append(types, fields[5])
	}
	assert.ElementsMatch(t, []string{"(3,1)", "(1,3)"}, types)

	for _, line := range blocks["vertices"] {
		assert.Len(t, strings.Fields(line), 5)
	}
}

func TestWriteRun(t *testing.T) {
	res := minimalRun(t)
	dir := path.Join(t.TempDir(), "out")

	triFile, summaryFile, err := WriteRun(dir, res, "alice", "node7")
	require.NoError(t, err)
	assert.Equal(t, path.Join(dir, "Spherical-"+res.RunID.String()+".tri"), triFile)
	assert.Equal(t, path.Join(dir, res.RunID.String()+".yaml"), summaryFile)

	_, err = os.Stat(triFile)
	assert.NoError(t, err)

	f, err := os.Open(summaryFile)
	require.NoError(t, err)
	defer f.Close()
	s, err := ReadSummary(f)
	require.NoError(t, err)

	assert.Equal(t, res.RunID.String(), s.RunID)
	assert.Equal(t, "alice", s.User)
	assert.Equal(t, "node7", s.Hostname)
	assert.Equal(t, "Spherical", s.Params.Topology)
	assert.Equal(t, "Minimal", s.Params.Seed)
	assert.True(t, s.Construction.Converged)
	assert.True(t, s.Validation.Valid)
	assert.Equal(t, 2, s.Validation.FiniteCells)
	assert.Equal(t, 7, s.Validation.FiniteFacets)
	assert.Equal(t, 0, s.Validation.Slivers)
	assert.InDelta(t, 0.8660254, s.Validation.MaxCircumradius, 1e-6)
	require.NotNil(t, s.Classification)
	assert.Equal(t, 1, s.Classification.ThreeOne)
	assert.Equal(t, 1, s.Classification.OneThree)
	assert.Equal(t, 6, s.Classification.TimelikeEdges)
	assert.True(t, s.Classification.Consistent)
}
