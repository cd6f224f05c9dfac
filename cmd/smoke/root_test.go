package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestDemo(t *testing.T) {
	for _, backend := range []string{"sync", "thread", "pool"} {
		out := run(t, "demo", "--scheduler", backend)
		assert.Contains(t, out, "delayed greeting: hello")
		assert.Contains(t, out, "squares in input order: [0 1 4 9 16 25 36 49]")
		assert.Contains(t, out, "filter even, map x2: [4 8]")
		assert.Contains(t, out, "sum of merged ranges: 520")
		assert.Contains(t, out, "settled 1: failed: execution failure: panic: demo panic")
	}
}

func TestLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\ngamma\nalphabet\n"), 0o600))

	assert.Equal(t, "alpha\nbeta\ngamma\nalphabet\n", run(t, "lines", path))
	assert.Equal(t, "     1\talpha\n     4\talphabet\n", run(t, "lines", path, "-n", "--grep", "alpha"))
}

func TestLinesMissingFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"lines", filepath.Join(t.TempDir(), "nope")})
	require.Error(t, cmd.Execute())
}

func TestBench(t *testing.T) {
	out := run(t, "bench", "--scheduler", "pool", "--threads", "4", "--jobs", "20", "--work", "0s")
	assert.Contains(t, out, "jobs: 20")
	assert.Contains(t, out, "pool: bound=4 submitted=20")
}

func TestInvalidBackend(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"demo", "--scheduler", "fibers"})
	require.ErrorContains(t, cmd.Execute(), "scheduler.backend")
}
