package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/hotunit/internal/cli"
	"github.com/specialistvlad/hotunit/internal/unit"
	"github.com/stretchr/testify/require"
)

func TestRun_Call(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "math"), 0o755))
	err := os.WriteFile(filepath.Join(dir, "math", "Add.unit"), []byte(`
unit "math.Add" {
  input "a" {
    type = number
  }
  input "b" {
    type    = number
    default = 1
  }

  exports {
    sum = input.a + input.b
  }
}
`), 0o600)
	require.NoError(t, err, "failed to set up unit file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err = run(context.Background(), out, errOut, []string{"--path", dir, "call", "math.Add", "sum", "a=40", "b=2"})

	// --- Assert ---
	require.NoError(t, err, "run() failed, logs:\n%s", errOut.String())
	require.Equal(t, "42\n", out.String())
}

func TestRun_DefinitionError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A manifest with a missing closing brace must surface as a definition error.
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0o755))
	err := os.WriteFile(filepath.Join(dir, "broken", "Unit.unit"), []byte(`
unit "broken.Unit" {
  exports {
    x = 1
`), 0o600)
	require.NoError(t, err, "failed to set up unit file")

	// --- Act ---
	runErr := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--path", dir, "call", "broken.Unit", "x"})

	// --- Assert ---
	require.Error(t, runErr)
	require.True(t, errors.Is(runErr, unit.ErrDefinition), "expected a definition error, got %v", runErr)
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
