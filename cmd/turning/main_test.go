package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const door = `
name: door
states: [closed, open]
initialize:
  - states: closed
    by: installing door
turns:
  - from: closed
    to: open
    by: opening
  - from: open
    to: closed
    by: closing
`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(door), 0o644))
	return path
}

// execute runs the root command with a file store under a fresh directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func storeFlags(dir string) []string {
	return []string{"--store", "file", "--store-path", dir}
}

func TestValidate(t *testing.T) {
	out, err := execute(t, append([]string{"validate", writeModel(t), "--seed", "seed"}, storeFlags(t.TempDir())...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `Model "door" is valid!`)
	assert.Contains(t, out, "test cases")
}

func TestValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("states: [a]\nstates_typo: 1\n"), 0o644))

	_, err := execute(t, append([]string{"validate", path}, storeFlags(t.TempDir())...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestList_Raw(t *testing.T) {
	out, err := execute(t, append([]string{"list", writeModel(t), "--seed", "seed", "--raw"}, storeFlags(t.TempDir())...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `door (seed "seed")`)
	assert.Contains(t, out, "**Test Case 1**")
}

func TestGraph(t *testing.T) {
	out, err := execute(t, append([]string{"graph", writeModel(t), "--seed", "seed", "--case", "1"}, storeFlags(t.TempDir())...)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `start -- "Initialize [closed] by installing door" --> c0`)
	assert.Contains(t, out, `c0 -- "Turn [closed] to [open] by opening" --> c1`)
	assert.Contains(t, out, "classDef")

	_, err = execute(t, append([]string{"graph", writeModel(t), "--seed", "seed", "--case", "99"}, storeFlags(t.TempDir())...)...)
	assert.ErrorContains(t, err, `test case "99" not found`)
}

func TestRunAndReport(t *testing.T) {
	dir := t.TempDir()
	model := writeModel(t)

	out, err := execute(t, append([]string{"run", model, "--seed", "seed", "--suite", "front-door"}, storeFlags(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Case 1")

	out, err = execute(t, append([]string{"report"}, storeFlags(dir)...)...)
	require.NoError(t, err)
	assert.Equal(t, "front-door\n", out)

	out, err = execute(t, append([]string{"report", "front-door"}, storeFlags(dir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `of "front-door", seed "seed"`)
	assert.Contains(t, out, "passed")
}

func TestReport_FailingNeedsSQLite(t *testing.T) {
	_, err := execute(t, append([]string{"report", "--failing"}, storeFlags(t.TempDir())...)...)
	assert.ErrorContains(t, err, "cannot filter failing suites")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1.0")
}
