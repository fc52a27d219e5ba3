package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/mermaid"
	"github.com/specialistvlad/graphvisgo/internal/metrics"
	"github.com/specialistvlad/graphvisgo/internal/renderer"
	"github.com/specialistvlad/graphvisgo/internal/surface"
)

// DefaultSettle is the quiet period a burst of changes must observe before a
// render starts.
const DefaultSettle = 300 * time.Millisecond

// FailureMessage is shown when a render fails.
const FailureMessage = "Failed to generate diagram."

// Artifact names inside a render's temp directory.
const (
	InputFile  = "graph.mmd"
	OutputFile = "diagram.png"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("scheduler: closed")

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(s *Scheduler) { s.settle = d }
}

// WithBackground sets the renderer background theme.
func WithBackground(bg string) Option {
	return func(s *Scheduler) { s.background = bg }
}

// WithTempDir sets the parent of per-render temp directories. Empty means
// os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Scheduler) { s.tempDir = dir }
}

// WithMetrics records render outcomes and notifications in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Scheduler) { s.metrics = c }
}

// WithResultHook calls fn on the loop after every finished render, including
// cancelled ones.
func WithResultHook(fn func(Result)) Option {
	return func(s *Scheduler) { s.onResult = fn }
}

// task is one render attempt.
type task struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	// Guarded by Scheduler.mu.
	running   bool
	cancelled bool
}

// outcome is what a worker hands back to the loop.
type outcome struct {
	state State
	dir   string
	image surface.Image
	edges int
	err   error
}

// Scheduler debounces change notifications and drives the renderer. See the
// package documentation for the state machine.
type Scheduler struct {
	ctx      context.Context
	source   Source
	renderer renderer.Renderer
	display  Display
	poster   Poster

	settle     time.Duration
	background string
	tempDir    string
	metrics    *metrics.Collector
	onResult   func(Result)

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	pending    bool
	current    *task
	last       Result
	closed     bool
}

// New creates a scheduler. ctx carries the logger and bounds every render.
func New(ctx context.Context, source Source, r renderer.Renderer, display Display, poster Poster, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:        ctx,
		source:     source,
		renderer:   r,
		display:    display,
		poster:     poster,
		settle:     DefaultSettle,
		background: renderer.DefaultBackground,
		last:       Result{State: StateIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify records that the graph changed and restarts the settle timer. Safe
// to call from any goroutine.
func (s *Scheduler) Notify() {
	s.metrics.ObserveEvent()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.pending = true
	s.timer = time.AfterFunc(s.settle, func() {
		s.poster.Post(func() { s.fire(gen) })
	})
}

// Flush starts a render immediately, skipping the settle window.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	gen := s.generation
	s.pending = true
	s.mu.Unlock()

	if !s.poster.Post(func() { s.fire(gen) }) {
		return ErrClosed
	}
	return nil
}

// State reports the live phase of the pipeline.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pending:
		return StateDebouncing
	case s.current != nil && s.current.running:
		return StateRunning
	default:
		return StateIdle
	}
}

// Last returns the most recent finished render.
func (s *Scheduler) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Close stops the timer, cancels the running render and waits for its
// process to exit.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	t := s.current
	if t != nil && t.running {
		t.cancelled = true
		t.cancel()
	}
	s.mu.Unlock()

	if t != nil {
		<-t.done
	}
}

// fire runs on the loop once the settle window has passed.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil

	prev := s.current
	if prev != nil && prev.running {
		prev.cancelled = true
		prev.cancel()
		s.logger(prev).Debug("Cancelling superseded render.")
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{
		id:      uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
		running: true,
	}
	s.current = t
	s.mu.Unlock()

	edges := s.source.EnabledEdges()
	go s.work(t, prev, edges)
}

// work runs off the loop. It never overlaps the previous task's process.
func (s *Scheduler) work(t *task, prev *task, edges []graph.Edge) {
	defer close(t.done)
	defer t.cancel()

	if prev != nil {
		<-prev.done
	}

	out := s.render(t, edges)
	if !s.poster.Post(func() { s.complete(t, out) }) {
		removeDir(out.dir)
	}
}

func (s *Scheduler) render(t *task, edges []graph.Edge) outcome {
	logger := s.logger(t)
	out := outcome{edges: len(edges)}

	if err := t.ctx.Err(); err != nil {
		out.state, out.err = StateCancelled, err
		return out
	}

	dir, err := os.MkdirTemp(s.tempDir, "graphvisgo-*")
	if err != nil {
		out.state, out.err = StateFailed, fmt.Errorf("failed to create temp dir: %w", err)
		return out
	}
	out.dir = dir

	src := mermaid.Source(edges)
	input := filepath.Join(dir, InputFile)
	if err := os.WriteFile(input, []byte(src), 0o600); err != nil {
		out.state, out.err = StateFailed, fmt.Errorf("failed to write %s: %w", InputFile, err)
		return out
	}

	size := mermaid.OutputSize(mermaid.CountEdges(src))
	req := renderer.Request{
		InputPath:  input,
		OutputPath: filepath.Join(dir, OutputFile),
		Width:      size,
		Height:     size,
		Background: s.background,
	}

	logger.Debug("Starting render.", "edges", len(edges), "size", size)
	err = s.renderer.Render(t.ctx, req)
	switch {
	case t.ctx.Err() != nil:
		out.state, out.err = StateCancelled, t.ctx.Err()
	case err != nil:
		out.state, out.err = StateFailed, err
	default:
		out.state = StateSucceeded
		out.image = surface.Image{
			TaskID: t.id,
			Path:   req.OutputPath,
			Width:  size,
			Height: size,
			Edges:  len(edges),
		}
	}
	return out
}

// complete runs on the loop with the worker's outcome.
func (s *Scheduler) complete(t *task, out outcome) {
	defer removeDir(out.dir)

	s.mu.Lock()
	t.running = false
	if t.cancelled || s.current != t {
		out.state = StateCancelled
	}
	s.mu.Unlock()

	logger := s.logger(t)
	res := Result{
		TaskID:  t.id,
		State:   out.state,
		Edges:   out.edges,
		Elapsed: time.Since(t.started),
		Err:     out.err,
	}

	switch out.state {
	case StateSucceeded:
		logger.Info("Render finished.", "edges", out.edges, "elapsed", res.Elapsed)
		if err := s.display.ShowImage(s.ctx, out.image); err != nil {
			logger.Warn("Failed to display diagram.", "error", err)
		}
	case StateFailed:
		logger.Warn("Render failed.", "error", out.err)
		s.display.ShowError(s.ctx, FailureMessage)
	default:
		logger.Debug("Render discarded.")
	}

	s.metrics.ObserveRender(out.state.outcome(), res.Elapsed)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(res)
	}
}

func (s *Scheduler) logger(t *task) *slog.Logger {
	return ctxlog.FromContext(s.ctx).With("task_id", t.id)
}

func removeDir(dir string) {
	if dir != "" {
		os.RemoveAll(dir)
	}
}
