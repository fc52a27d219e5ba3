package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/graphvisgo/internal/hcl_adapter"
	"github.com/specialistvlad/graphvisgo/internal/renderer"
	"github.com/specialistvlad/graphvisgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir      string
	edges    string
	output   string
	renderer *testutil.FakeRenderer
	logs     *testutil.SafeBuffer
}

func newTestEnv(t *testing.T, text string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		edges:    filepath.Join(dir, "graph.txt"),
		output:   filepath.Join(dir, "graph.png"),
		renderer: testutil.NewFakeRenderer(),
		logs:     &testutil.SafeBuffer{},
	}
	require.NoError(t, os.WriteFile(env.edges, []byte(text), 0o600))

	t.Cleanup(func() {
		if os.Getenv("GRAPHVIS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), env.logs.String())
		}
	})
	return env
}

func (e *testEnv) newApp(t *testing.T, cfg Config) *App {
	t.Helper()
	cfg.EdgesPath = e.edges
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	if cfg.Overrides.Output == nil {
		cfg.Overrides.Output = &e.output
	}
	settle := 20 * time.Millisecond
	if cfg.Overrides.Settle == nil {
		cfg.Overrides.Settle = &settle
	}

	a, err := New(e.logs, &cfg, hcl_adapter.NewLoader(), WithRenderer(e.renderer))
	require.NoError(t, err)
	return a
}

func TestApp_RunOnce(t *testing.T) {
	env := newTestEnv(t, "A->B\nB->C\nnot an edge\nC->A")
	a := env.newApp(t, Config{Once: true})

	require.NoError(t, a.Run(context.Background()))

	calls := env.renderer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "graph TD\n  A --> B\n  B --> C\n  C --> A", calls[0].Source)
	assert.Equal(t, "light", calls[0].Request.Background)

	got, err := os.ReadFile(env.output)
	require.NoError(t, err)
	assert.Equal(t, testutil.FakePNG, string(got))
	assert.Contains(t, env.logs.String(), "Diagram updated.")
}

func TestApp_RunOnceDisabledVertices(t *testing.T) {
	env := newTestEnv(t, "A->B\nB->C\nC->D")
	a := env.newApp(t, Config{Once: true, Overrides: Overrides{Disabled: []string{"B", "Z"}}})

	require.NoError(t, a.Run(context.Background()))

	calls := env.renderer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "graph TD\n  C --> D", calls[0].Source)
	assert.Contains(t, env.logs.String(), "Cannot disable unknown vertex.")

	v, ok := a.Model().Vertex("B")
	require.True(t, ok)
	assert.False(t, v.Enabled)
}

func TestApp_RunOnceFailure(t *testing.T) {
	env := newTestEnv(t, "A->B")
	env.renderer.FailWith(&renderer.ExitError{Code: 1, Stderr: "Parse error"})
	a := env.newApp(t, Config{Once: true})

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRenderFailed))

	_, statErr := os.Stat(env.output)
	assert.True(t, os.IsNotExist(statErr), "no image is published on failure")
	assert.Regexp(t, `level=ERROR source=\S+ msg="Failed to generate diagram."`, env.logs.String())
}

func TestApp_RunOnceMissingFile(t *testing.T) {
	env := newTestEnv(t, "")
	a := env.newApp(t, Config{Once: true})
	require.NoError(t, os.Remove(env.edges))

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read edges file")
}

func TestApp_WatchMode(t *testing.T) {
	env := newTestEnv(t, "A->B")
	a := env.newApp(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		calls := env.renderer.Calls()
		return len(calls) == 1 && calls[0].Source == "graph TD\n  A --> B"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(env.edges, []byte("A->B\nB->C"), 0o600))
	require.Eventually(t, func() bool {
		calls := env.renderer.Calls()
		return len(calls) > 0 && calls[len(calls)-1].Source == "graph TD\n  A --> B\n  B --> C"
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := os.Stat(env.output)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestApp_WatchModeDisablesLateVertices(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.Remove(env.edges))
	a := env.newApp(t, Config{Overrides: Overrides{Disabled: []string{"B"}}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// The missing file reconciles to an empty graph first.
	require.Eventually(t, func() bool {
		calls := env.renderer.Calls()
		return len(calls) > 0 && calls[len(calls)-1].Source == "graph TD"
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(env.edges, []byte("A->B\nB->C\nC->D"), 0o600))
	require.Eventually(t, func() bool {
		calls := env.renderer.Calls()
		return len(calls) > 0 && calls[len(calls)-1].Source == "graph TD\n  C --> D"
	}, 5*time.Second, 10*time.Millisecond)

	// Once applied, the label is no longer forced off.
	require.NoError(t, a.loop.Do(ctx, func() {
		a.model.SetVertexStatus(ctx, "B", true)
	}))
	require.NoError(t, os.WriteFile(env.edges, []byte("A->B\nB->C"), 0o600))
	require.Eventually(t, func() bool {
		calls := env.renderer.Calls()
		return len(calls) > 0 && calls[len(calls)-1].Source == "graph TD\n  A --> B\n  B --> C"
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, env.logs.String(), "Cannot disable unknown vertex.")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestNew_ConfigFileAndOverrides(t *testing.T) {
	env := newTestEnv(t, "A->B")
	cfgPath := filepath.Join(env.dir, "graphvis.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
renderer {
  background = "dark"
}
scheduler {
  settle = "1s"
}
`), 0o600))

	bg := "transparent"
	a := env.newApp(t, Config{ConfigPath: cfgPath, Overrides: Overrides{Background: &bg}})

	assert.Equal(t, "transparent", a.Config().Renderer.Background, "flags win over the file")
	assert.Equal(t, 20*time.Millisecond, a.Config().Scheduler.Settle)
	assert.Equal(t, env.output, a.Config().Output.Path)
}

func TestNew_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, "A->B")
	bg := "neon"
	cfg := &Config{EdgesPath: env.edges, Overrides: Overrides{Background: &bg}}

	_, err := New(env.logs, cfg, hcl_adapter.NewLoader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Renderer.Background must be one of")
}

func TestNew_ConfigLoadError(t *testing.T) {
	env := newTestEnv(t, "A->B")
	cfg := &Config{EdgesPath: env.edges, ConfigPath: filepath.Join(env.dir, "missing.hcl")}

	_, err := New(env.logs, cfg, hcl_adapter.NewLoader())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{EdgesPath: "graph.txt"})
	require.NoError(t, err)
	assert.Equal(t, "graph.txt", cfg.EdgesPath)
}
