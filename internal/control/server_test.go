package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/loop"
	"github.com/specialistvlad/graphvisgo/internal/metrics"
	"github.com/specialistvlad/graphvisgo/internal/scheduler"
	"github.com/specialistvlad/graphvisgo/internal/vertex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	state scheduler.State
	last  scheduler.Result
}

func (p *fakePipeline) State() scheduler.State  { return p.state }
func (p *fakePipeline) Last() scheduler.Result { return p.last }

type fixture struct {
	model    *graph.Model
	pipeline *fakePipeline
	srv      *httptest.Server
	emitted  chan []graph.Edge
}

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(ctxlog.Discard(context.Background()))

	f := &fixture{
		pipeline: &fakePipeline{state: scheduler.StateIdle, last: scheduler.Result{State: scheduler.StateIdle}},
		emitted:  make(chan []graph.Edge, 16),
	}
	f.model = graph.New(vertex.NewStore(), graph.WithListener(func(edges []graph.Edge) { f.emitted <- edges }))
	f.model.Reconcile(ctx, text)
	<-f.emitted

	l := loop.New(0)
	go l.Run(ctx)

	c := metrics.NewCollector("graphvisgo")
	c.ObserveGraph(f.model.VertexCount(), len(f.model.EnabledEdges()))

	s := New(f.model, f.pipeline, l, c.Handler())
	f.srv = httptest.NewServer(s.Handler(ctx))
	t.Cleanup(func() {
		f.srv.Close()
		cancel()
		<-l.Stopped()
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, "")

	code, body := f.do(t, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK\n", string(body))
}

func TestServer_Vertices(t *testing.T) {
	f := newFixture(t, "A->B\nB->C")

	code, body := f.do(t, http.MethodGet, "/vertices")
	require.Equal(t, http.StatusOK, code)

	var resp VerticesResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Vertices, 3)
	assert.Equal(t, VertexResponse{ID: 1, Label: "A", Enabled: true, Degree: 1}, resp.Vertices[0])
	assert.Equal(t, "C", resp.Vertices[2].Label)
}

func TestServer_DisableAndEnable(t *testing.T) {
	f := newFixture(t, "A->B\nB->C")

	code, body := f.do(t, http.MethodPost, "/vertices/B/disable")
	require.Equal(t, http.StatusOK, code)
	var enabled []EdgeResponse
	require.NoError(t, json.Unmarshal(body, &enabled))
	assert.Empty(t, enabled)
	assert.Empty(t, <-f.emitted, "status change must notify with the enabled edges")

	_, body = f.do(t, http.MethodGet, "/edges")
	var all []EdgeResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Equal(t, []EdgeResponse{
		{Left: "A", Right: "B", Enabled: false},
		{Left: "B", Right: "C", Enabled: false},
	}, all)

	code, _ = f.do(t, http.MethodPost, "/vertices/B/enable")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, <-f.emitted, 2)
}

func TestServer_UnknownVertex(t *testing.T) {
	f := newFixture(t, "A->B")

	code, body := f.do(t, http.MethodPost, "/vertices/Z/disable")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(body), `vertex \"Z\" not found`)
}

func TestServer_Status(t *testing.T) {
	f := newFixture(t, "A->B\nB->C")
	f.pipeline.state = scheduler.StateRunning
	f.pipeline.last = scheduler.Result{TaskID: "t-1", State: scheduler.StateFailed, Err: errors.New("exit status 1")}

	code, body := f.do(t, http.MethodGet, "/status")
	require.Equal(t, http.StatusOK, code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, StatusResponse{
		State:        "running",
		LastOutcome:  "failed",
		LastTaskID:   "t-1",
		LastError:    "exit status 1",
		Vertices:     3,
		Edges:        2,
		EnabledEdges: 2,
	}, resp)
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t, "A->B")

	code, body := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "graphvisgo_vertices 2")
}

func TestServer_StoppedLoop(t *testing.T) {
	model := graph.New(vertex.NewStore())
	ctx, cancel := context.WithCancel(ctxlog.Discard(context.Background()))
	model.Reconcile(ctx, "A->B")

	l := loop.New(0)
	go l.Run(ctx)
	cancel()
	<-l.Stopped()

	s := New(model, &fakePipeline{}, l, nil)
	rec := httptest.NewRecorder()
	s.Handler(ctxlog.Discard(context.Background())).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/vertices/A/disable", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler(ctxlog.Discard(context.Background())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics are not routed without a handler")
}

func TestServer_StartShutdown(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	s := New(graph.New(vertex.NewStore()), &fakePipeline{}, loop.New(0), nil)

	require.NoError(t, s.Shutdown(ctx), "shutdown before start is a no-op")
	require.NoError(t, s.Start(ctx, "127.0.0.1:0"))

	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Shutdown(ctx))
}
