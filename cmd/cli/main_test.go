package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/graphvisgo/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ConfigError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	cfgPath := filepath.Join(tempDir, "graphvis.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("renderer {\n  command = \n"), 0o600))
	edgesPath := filepath.Join(tempDir, "graph.txt")
	require.NoError(t, os.WriteFile(edgesPath, []byte("A->B"), 0o600))

	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-config", cfgPath, edgesPath})

	// --- Assert ---
	require.Error(t, err, "run() should fail on an invalid config file")
	require.Contains(t, err.Error(), "failed to load configuration")
	require.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
}

func TestRun_OnceWithFailingRenderer(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	edgesPath := filepath.Join(tempDir, "graph.txt")
	require.NoError(t, os.WriteFile(edgesPath, []byte("A->B"), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	// "false" exits non-zero without producing an image.
	err := run(context.Background(), out, []string{"-once", "-renderer", "false", "-settle", "10ms", edgesPath})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "diagram render failed")
	require.Contains(t, out.String(), "Failed to generate diagram.")
}
