package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gocdt/io"
)

func TestProfileIsWrittenBeforeExit(t *testing.T) {
	dir := t.TempDir()
	con := &io.SharedConfig{ProfileFile: filepath.Join(dir, "prof.out")}
	fg := setupFiles(con)
	require.NotNil(t, fg.prof)

	// The same step Fatal takes before exiting.
	fg.stopProfile()
	assert.Nil(t, fg.prof)
	info, err := os.Stat(con.ProfileFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Closing afterwards is harmless.
	fg.Close()
	fg.stopProfile()
}

func TestGetModeName(t *testing.T) {
	cdt, example := "run.cfg", ""
	name, err := getModeName(map[string]*string{
		"CDT": &cdt, "ExampleConfig": &example,
	})
	require.NoError(t, err)
	assert.Equal(t, "CDT", name)

	example = "CDT"
	_, err = getModeName(map[string]*string{
		"CDT": &cdt, "ExampleConfig": &example,
	})
	assert.Error(t, err)

	cdt, example = "", ""
	_, err = getModeName(map[string]*string{
		"CDT": &cdt, "ExampleConfig": &example,
	})
	assert.Error(t, err)
}
