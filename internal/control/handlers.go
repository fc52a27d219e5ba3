package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/specialistvlad/graphvisgo/internal/ctxlog"
	"github.com/specialistvlad/graphvisgo/internal/graph"
	"github.com/specialistvlad/graphvisgo/internal/loop"
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State        string `json:"state"`
	LastOutcome  string `json:"last_outcome"`
	LastTaskID   string `json:"last_task_id,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	Vertices     int    `json:"vertices"`
	Edges        int    `json:"edges"`
	EnabledEdges int    `json:"enabled_edges"`
}

// VertexResponse is one entry of GET /vertices.
type VertexResponse struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Degree  int    `json:"degree"`
}

// VerticesResponse is the body of GET /vertices.
type VerticesResponse struct {
	Count    int              `json:"count"`
	Vertices []VertexResponse `json:"vertices"`
}

// EdgeResponse is one entry of GET /edges.
type EdgeResponse struct {
	Left    string `json:"left"`
	Right   string `json:"right"`
	Enabled bool   `json:"enabled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	last := s.pipeline.Last()
	resp := StatusResponse{
		State:        s.pipeline.State().String(),
		LastOutcome:  last.State.String(),
		LastTaskID:   last.TaskID,
		Vertices:     len(s.graph.Vertices()),
		Edges:        len(s.graph.Edges()),
		EnabledEdges: len(s.graph.EnabledEdges()),
	}
	if last.Err != nil {
		resp.LastError = last.Err.Error()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) vertices(w http.ResponseWriter, r *http.Request) {
	all := s.graph.Vertices()
	resp := VerticesResponse{Count: len(all), Vertices: make([]VertexResponse, 0, len(all))}
	for _, v := range all {
		resp.Vertices = append(resp.Vertices, VertexResponse{ID: v.ID, Label: v.Label, Enabled: v.Enabled, Degree: v.Degree})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) edges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toEdgeResponses(s.graph.Edges()))
}

// setStatus toggles a vertex on the presentation loop.
func (s *Server) setStatus(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		label := chi.URLParam(r, "label")
		ctx := r.Context()

		var found bool
		err := s.runner.Do(ctx, func() {
			found = s.graph.SetVertexStatus(ctx, label, enabled)
		})
		switch {
		case errors.Is(err, loop.ErrStopped):
			writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "shutting down"})
			return
		case err != nil:
			writeJSON(w, r, http.StatusRequestTimeout, errorResponse{Error: err.Error()})
			return
		case !found:
			writeJSON(w, r, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("vertex %q not found", label)})
			return
		}

		ctxlog.FromContext(ctx).Info("Vertex status changed.", "label", label, "enabled", enabled)
		writeJSON(w, r, http.StatusOK, toEdgeResponses(s.graph.EnabledEdges()))
	}
}

func toEdgeResponses(edges []graph.Edge) []EdgeResponse {
	out := make([]EdgeResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeResponse{Left: e.Left, Right: e.Right, Enabled: e.Enabled})
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.FromContext(r.Context()).Warn("Failed to encode response.", "error", err)
	}
}
