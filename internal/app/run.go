package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/graphvisgo/internal/control"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/scheduler"
	"github.com/specialistvlad/graphvisgo/internal/surface"
	"github.com/specialistvlad/graphvisgo/internal/watch"
	"golang.org/x/sync/errgroup"
)

// ErrRenderFailed is returned by a one-shot run whose render did not succeed.
var ErrRenderFailed = errors.New("diagram render failed")

// Run executes the application until ctx is cancelled, or until the single
// render finishes in one-shot mode.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.logger.Debug("App.Run method started.", "once", a.appCfg.Once)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loop.Run(gctx) })

	surfaces := surface.Multi(a.surfaces)
	if a.config.SocketIO.URL != "" {
		sock, err := surface.DialSocket(gctx, surface.SocketConfig{
			URL:                a.config.SocketIO.URL,
			Namespace:          a.config.SocketIO.Namespace,
			InsecureSkipVerify: a.config.SocketIO.InsecureSkipVerify,
		}, a.socketStatus(gctx))
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		defer sock.Close()
		surfaces = append(surfaces, sock)
	}

	results := make(chan scheduler.Result, 1)
	sched := scheduler.New(gctx, a.model, a.renderer, surfaces, a.loop,
		scheduler.WithSettle(a.config.Scheduler.Settle),
		scheduler.WithBackground(a.config.Renderer.Background),
		scheduler.WithMetrics(a.metrics),
		scheduler.WithResultHook(func(res scheduler.Result) {
			if res.State == scheduler.StateCancelled {
				return
			}
			select {
			case results <- res:
			default:
			}
		}),
	)
	a.model.OnEnabledEdgesChanged(func(edges []graph.Edge) {
		a.metrics.ObserveGraph(a.model.VertexCount(), len(edges))
		sched.Notify()
	})
	g.Go(func() error {
		<-gctx.Done()
		sched.Close()
		return nil
	})

	var runErr error
	if a.appCfg.Once {
		runErr = a.runOnce(gctx, sched, results)
		cancel()
	} else {
		runErr = a.startWatching(gctx, g, sched)
		if runErr != nil {
			cancel()
		}
	}

	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	a.logger.Debug("App.Run method finished.")
	return runErr
}

// runOnce renders the current file contents a single time.
func (a *App) runOnce(ctx context.Context, sched *scheduler.Scheduler, results <-chan scheduler.Result) error {
	data, err := os.ReadFile(a.appCfg.EdgesPath)
	if err != nil {
		return fmt.Errorf("failed to read edges file: %w", err)
	}

	if err := a.loop.Do(ctx, func() {
		a.reconcile(ctx, string(data))
		a.warnPendingDisabled()
	}); err != nil {
		return err
	}
	if err := sched.Flush(); err != nil {
		return err
	}

	a.logger.Info("🚀 Rendering diagram...")
	select {
	case res := <-results:
		if res.State != scheduler.StateSucceeded {
			return fmt.Errorf("%w: %w", ErrRenderFailed, res.Err)
		}
		a.logger.Info("🏁 Diagram rendered.", "edges", res.Edges, "elapsed", res.Elapsed)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startWatching launches the long-running components on g.
func (a *App) startWatching(ctx context.Context, g *errgroup.Group, sched *scheduler.Scheduler) error {
	w := watch.New(a.appCfg.EdgesPath, func(text string) {
		a.loop.Post(func() { a.reconcile(ctx, text) })
	})
	g.Go(func() error { return w.Run(ctx) })

	if a.config.Control.Port <= 0 {
		a.logger.Debug("Control server not started: disabled")
		return nil
	}

	srv := control.New(a.model, sched, a.loop, a.metrics.Handler())
	if err := srv.Start(ctx, fmt.Sprintf(":%d", a.config.Control.Port)); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(ctx)
	})
	return nil
}

// reconcile runs on the loop. Vertices named in the configuration are
// disabled as soon as they appear in the graph, once each.
func (a *App) reconcile(ctx context.Context, text string) {
	a.model.Reconcile(ctx, text)
	if len(a.pendingDisabled) == 0 {
		return
	}
	remaining := a.pendingDisabled[:0]
	for _, label := range a.pendingDisabled {
		if _, ok := a.model.Vertex(label); !ok {
			remaining = append(remaining, label)
			continue
		}
		a.model.SetVertexStatus(ctx, label, false)
		a.logger.Debug("Configured vertex disabled.", "label", label)
	}
	a.pendingDisabled = remaining
	if len(remaining) > 0 {
		a.logger.Debug("Configured vertices not in graph yet.", "labels", remaining)
	}
}

// warnPendingDisabled reports configured labels that never appeared.
func (a *App) warnPendingDisabled() {
	for _, label := range a.pendingDisabled {
		a.logger.Warn("Cannot disable unknown vertex.", "label", label)
	}
}

// socketStatus forwards viewer toggles to the loop.
func (a *App) socketStatus(ctx context.Context) surface.StatusFunc {
	return func(label string, enabled bool) {
		a.loop.Post(func() {
			if !a.model.SetVertexStatus(ctx, label, enabled) {
				a.logger.Debug("Viewer toggled unknown vertex.", "label", label)
			}
		})
	}
}
