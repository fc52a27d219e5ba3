package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer

	cfg, exit, err := Parse([]string{"graph.txt"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "graph.txt", cfg.EdgesPath)
	assert.Empty(t, cfg.ConfigPath)
	assert.False(t, cfg.Once)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.Overrides.Output)
	assert.Nil(t, cfg.Overrides.Settle)
	assert.Nil(t, cfg.Overrides.Background)
	assert.Nil(t, cfg.Overrides.ControlPort)
	assert.Empty(t, cfg.Overrides.Disabled)
}

func TestParse_AllFlags(t *testing.T) {
	var out bytes.Buffer
	args := []string{
		"-config", "graphvis.hcl",
		"-o", "out.png",
		"-once",
		"-settle", "500ms",
		"-renderer", "/usr/local/bin/mmdc",
		"-background", "Dark",
		"-control-port", "8080",
		"-socketio-url", "http://localhost:3000/socket.io/",
		"-disable", "A, B,,C",
		"-log-format", "JSON",
		"-log-level", "debug",
		"edges.txt",
	}

	cfg, exit, err := Parse(args, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "edges.txt", cfg.EdgesPath)
	assert.Equal(t, "graphvis.hcl", cfg.ConfigPath)
	assert.True(t, cfg.Once)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)

	o := cfg.Overrides
	require.NotNil(t, o.Output)
	assert.Equal(t, "out.png", *o.Output)
	require.NotNil(t, o.Settle)
	assert.Equal(t, 500*time.Millisecond, *o.Settle)
	require.NotNil(t, o.Renderer)
	assert.Equal(t, "/usr/local/bin/mmdc", *o.Renderer)
	require.NotNil(t, o.Background)
	assert.Equal(t, "dark", *o.Background)
	require.NotNil(t, o.ControlPort)
	assert.Equal(t, 8080, *o.ControlPort)
	require.NotNil(t, o.SocketIOURL)
	assert.Equal(t, "http://localhost:3000/socket.io/", *o.SocketIOURL)
	assert.Equal(t, []string{"A", "B", "C"}, o.Disabled)
}

func TestParse_LongOutputWins(t *testing.T) {
	cfg, _, err := Parse([]string{"-output", "long.png", "-o", "short.png", "g.txt"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "long.png", *cfg.Overrides.Output)
}

func TestParse_HelpAndUsage(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "help flag", args: []string{"-h"}},
		{name: "no edges file", args: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tc.args, &out)
			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"-nope", "g.txt"}, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad log format", args: []string{"-log-format", "xml", "g.txt"}, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "g.txt"}, wantMsg: "invalid log-level"},
		{name: "bad settle syntax", args: []string{"-settle", "soon", "g.txt"}, wantMsg: "invalid value \"soon\" for flag -settle"},
		{name: "zero settle", args: []string{"-settle", "0s", "g.txt"}, wantMsg: "invalid settle"},
		{name: "bad background", args: []string{"-background", "neon", "g.txt"}, wantMsg: "invalid background"},
		{name: "bad port", args: []string{"-control-port", "70000", "g.txt"}, wantMsg: "invalid control-port"},
		{name: "two files", args: []string{"a.txt", "b.txt"}, wantMsg: "expected exactly one EDGES_FILE"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, exit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, exit)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}
