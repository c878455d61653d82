package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/untangle/pkg/buildinfo"
	"github.com/matzehuels/untangle/pkg/cache"
	unterrors "github.com/matzehuels/untangle/pkg/errors"
	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/metrics"
	"github.com/matzehuels/untangle/pkg/pipeline"
)

// maxRequestBody bounds incoming JSON payloads (8 MiB).
const maxRequestBody = 8 << 20

// newServeCmd creates the serve command, exposing the optimizer as a
// small HTTP API:
//
//	POST /api/optimize  {"graph": {...}, "options": {...}} → result document
//	POST /api/metrics   {"nodes": [...], "edges": [...]}   → metric set
//	GET  /healthz                                          → liveness probe
func newServeCmd(configPath *string) *cobra.Command {
	var addr, redisAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the optimizer as an HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if redisAddr != "" {
				cfg.Cache.RedisAddr = redisAddr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8311)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for layout caching (host:port)")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func runServe(ctx context.Context, cfg Config) error {
	logger := loggerFromContext(ctx)

	backend, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}

	// Scope API-written keys away from CLI ones so operators can flush
	// either side independently.
	runner := pipeline.NewRunner(backend, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api"), logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newRouter(runner, cfg, logger.With("component", "http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Serve.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

// newRouter builds the chi router with the API endpoints.
func newRouter(runner *pipeline.Runner, cfg Config, logger *charmlog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/optimize", handleOptimize(runner, cfg))
		r.Post("/metrics", handleMetrics)
	})
	return r
}

// requestLogger logs each request with method, path, status and duration.
func requestLogger(logger *charmlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}

// optimizeRequest is the POST /api/optimize body.
type optimizeRequest struct {
	Graph   *graph.Graph     `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// handleOptimize runs the full pipeline and returns the result document.
func handleOptimize(runner *pipeline.Runner, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body optimizeRequest
		if err := decodeJSON(w, req, &body); err != nil {
			return
		}
		if body.Graph == nil {
			writeError(w, unterrors.New(unterrors.ErrCodeInvalidInput, "missing graph"))
			return
		}
		if err := body.Graph.Validate(); err != nil {
			writeError(w, unterrors.Wrap(unterrors.ErrCodeInvalidGraph, err, "invalid graph: %v", err))
			return
		}

		// The API never produces files, so file formats are irrelevant
		// here; config-file layout defaults still apply.
		mergeLayoutOptions(&body.Options.Layout, cfg.Layout)
		body.Options.Formats = []string{pipeline.FormatJSON}

		result, err := runner.Execute(req.Context(), body.Graph, body.Options)
		if err != nil {
			writeError(w, err)
			return
		}

		data, err := pipeline.MarshalResult(result)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// handleMetrics scores a drawing without optimizing it.
func handleMetrics(w http.ResponseWriter, req *http.Request) {
	var g graph.Graph
	if err := decodeJSON(w, req, &g); err != nil {
		return
	}
	if err := g.Validate(); err != nil {
		writeError(w, unterrors.Wrap(unterrors.ErrCodeInvalidGraph, err, "invalid graph: %v", err))
		return
	}

	m := metrics.Measure(g.Vertices, g.Edges)
	writeJSON(w, http.StatusOK, m)
}

// handleHealth reports liveness plus build info.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// decodeJSON reads a bounded JSON body into v, writing the error
// response itself on failure.
func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, unterrors.Wrap(unterrors.ErrCodeInvalidInput, err, "decode request body"))
		return err
	}
	return nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps an error to an HTTP status via its error code.
func writeError(w http.ResponseWriter, err error) {
	code := unterrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case unterrors.ErrCodeInvalidInput, unterrors.ErrCodeInvalidGraph,
		unterrors.ErrCodeInvalidOptions, unterrors.ErrCodeInvalidDimensions,
		unterrors.ErrCodeInvalidFormat, unterrors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case unterrors.ErrCodeNotFound, unterrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: unterrors.UserMessage(err), Code: string(code)})
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
