// Package server exposes the knotmap pipeline as an HTTP API.
//
// The API accepts raw graph exports as JSON and returns render-ready
// element documents or importance rankings. All endpoints are stateless;
// caching happens inside the pipeline runner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	kerrors "github.com/knotmap/knotmap/pkg/errors"
	"github.com/knotmap/knotmap/pkg/graph"
	kio "github.com/knotmap/knotmap/pkg/io"
	"github.com/knotmap/knotmap/pkg/layout"
	"github.com/knotmap/knotmap/pkg/metrics"
	"github.com/knotmap/knotmap/pkg/pipeline"
)

// Request size limit. Graph exports are bounded by the node limit anyway;
// this guards against runaway bodies before decoding starts.
const maxBodyBytes = 64 << 20

// Server serves the pipeline over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around a pipeline runner. A nil logger falls back
// to the default logger.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Handler builds the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/rank", s.handleRank)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// =============================================================================
// Requests and Responses
// =============================================================================

// PipelineRequest is the body for layout and rank requests: a raw graph
// export plus pipeline options.
type PipelineRequest struct {
	Nodes   []graph.Node     `json:"nodes"`
	Edges   []graph.Edge     `json:"edges"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body returned by the layout endpoint.
type LayoutResponse struct {
	RunID     string            `json:"run_id"`
	GraphHash string            `json:"graph_hash"`
	Cached    bool              `json:"cached"`
	Build     graph.BuildStats  `json:"build"`
	Quality   elementsQuality   `json:"quality"`
	Document  json.RawMessage   `json:"document"`
	Durations map[string]string `json:"durations"`
}

type elementsQuality struct {
	NodeCount             int     `json:"node_count"`
	EdgeCount             int     `json:"edge_count"`
	AvgNearestNeighborGap float64 `json:"avg_nearest_neighbor_gap"`
	OverlappingPairs      int     `json:"overlapping_pairs"`
	ViewportOccupancy     float64 `json:"viewport_occupancy"`
}

// RankResponse is the body returned by the rank endpoint. Communities maps
// each retained node to its modularity cluster so callers can group the
// ranking without requesting a full layout.
type RankResponse struct {
	RunID       string           `json:"run_id"`
	Build       graph.BuildStats `json:"build"`
	Records     []metrics.Record `json:"records"`
	Communities map[string]int   `json:"communities"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout runs the full pipeline and returns the element document.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	opts := req.Options
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), kio.Input{Nodes: req.Nodes, Edges: req.Edges}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := json.Marshal(result.Document)
	if err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode document"))
		return
	}

	writeJSON(w, http.StatusOK, LayoutResponse{
		RunID:     result.RunID,
		GraphHash: result.GraphHash,
		Cached:    result.CacheInfo.ElementsHit,
		Build:     result.Stats.Build,
		Quality: elementsQuality{
			NodeCount:             result.Quality.NodeCount,
			EdgeCount:             result.Quality.EdgeCount,
			AvgNearestNeighborGap: result.Quality.AvgNearestNeighborGap,
			OverlappingPairs:      result.Quality.OverlappingPairs,
			ViewportOccupancy:     result.Quality.ViewportOccupancy,
		},
		Document: doc,
		Durations: map[string]string{
			"build":    result.Stats.BuildTime.String(),
			"metrics":  result.Stats.MetricsTime.String(),
			"sparsify": result.Stats.SparsifyTime.String(),
			"layout":   result.Stats.LayoutTime.String(),
			"export":   result.Stats.ExportTime.String(),
			"total":    result.Stats.TotalTime.String(),
		},
	})
}

// handleRank builds the graph and returns the importance ranking without
// computing a layout.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	opts := req.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	g, stats := graph.Build(req.Nodes, req.Edges, opts.BuildOptions())
	imp := metrics.Compute(g, opts.MetricsOptions())

	writeJSON(w, http.StatusOK, RankResponse{
		RunID:       chimiddleware.GetReqID(r.Context()),
		Build:       stats,
		Records:     imp.Ranked(),
		Communities: layout.Communities(g),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// decodeRequest decodes and validates a pipeline request body. On failure
// it writes the error response and returns ok=false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (PipelineRequest, bool) {
	var req PipelineRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode request body"))
		return PipelineRequest{}, false
	}
	if len(req.Nodes) == 0 {
		s.writeError(w, r, kerrors.New(kerrors.ErrCodeInvalidInput, "request contains no nodes"))
		return PipelineRequest{}, false
	}
	return req, true
}

// writeError maps structured error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := kerrors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case kerrors.ErrCodeInvalidInput, kerrors.ErrCodeInvalidNode, kerrors.ErrCodeInvalidEdge,
		kerrors.ErrCodeInvalidFormat, kerrors.ErrCodeInvalidPath, kerrors.ErrCodeInvalidOption:
		status = http.StatusBadRequest
	case kerrors.ErrCodeNotFound, kerrors.ErrCodeNodeNotFound, kerrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case kerrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: kerrors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
