// Package control exposes the running pipeline over HTTP: health, status,
// vertex listing and toggling, edges and Prometheus metrics.
package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/scheduler"
	"github.com/specialistvlad/graphvisgo/internal/vertex"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Graph is the read and toggle surface of the graph model.
type Graph interface {
	Vertices() []vertex.Vertex
	Edges() []graph.Edge
	EnabledEdges() []graph.Edge
	SetVertexStatus(ctx context.Context, label string, enabled bool) bool
}

// Pipeline reports the render scheduler's progress.
type Pipeline interface {
	State() scheduler.State
	Last() scheduler.Result
}

// Runner executes fn on the presentation loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Server is the HTTP control API.
type Server struct {
	graph    Graph
	pipeline Pipeline
	runner   Runner
	metrics  http.Handler

	httpServer *http.Server
	listener   net.Listener
}

// New creates a server. metrics may be nil, in which case /metrics is not
// routed.
func New(g Graph, p Pipeline, r Runner, metrics http.Handler) *Server {
	return &Server{graph: g, pipeline: p, runner: r, metrics: metrics}
}

// Handler builds the router.
func (s *Server) Handler(ctx context.Context) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(ctxlog.FromContext(ctx)))

	router.Get("/health", s.health)
	router.Get("/status", s.status)
	router.Get("/edges", s.edges)
	router.Route("/vertices", func(r chi.Router) {
		r.Get("/", s.vertices)
		r.Post("/{label}/enable", s.setStatus(true))
		r.Post("/{label}/disable", s.setStatus(false))
	})
	if s.metrics != nil {
		router.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return router
}

// Start binds addr and serves in the background.
func (s *Server) Start(ctx context.Context, addr string) error {
	logger := ctxlog.FromContext(ctx)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("🩺 Control server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Control server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if s.httpServer == nil {
		logger.Debug("Control server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	logger.Info("🩺 Shutting down control server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("control server shutdown failed: %w", err)
	}
	logger.Debug("Control server shut down gracefully.")
	return nil
}
