package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/deeeed/expo-audio-stream/internal/meminfo"
	"github.com/deeeed/expo-audio-stream/internal/metrics"
)

const serviceName = "memmonitor"

// StatusSource provides the memory report served by the API.
type StatusSource interface {
	Status() meminfo.Status
}

// HTTPServerConfig contains HTTP server configuration
type HTTPServerConfig struct {
	Address   string
	SessionID string
	Package   string
}

// HTTPServer provides HTTP API endpoints for the memory monitor
type HTTPServer struct {
	server    *http.Server
	logger    *zap.Logger
	cfg       HTTPServerConfig
	source    StatusSource
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	startTime time.Time
	listener  net.Listener
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg HTTPServerConfig, logger *zap.Logger, source StatusSource,
	m *metrics.Metrics, gatherer prometheus.Gatherer) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		cfg:       cfg,
		source:    source,
		metrics:   m,
		gatherer:  gatherer,
		startTime: time.Now(),
	}

	h.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      h.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// Routes returns the API router
func (h *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.withMetrics("/", h.handleRoot))
	r.Get("/health", h.withMetrics("/health", h.handleHealth))
	r.Get("/api/v1/memory", h.withMetrics("/api/v1/memory", h.handleMemory))

	// Prometheus metrics endpoint (not instrumented itself)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	return r
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		handler(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		h.metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(status), time.Since(startTime).Seconds())

		if status >= 400 {
			errorType := "client_error"
			if status >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// Start binds the listen address and serves in the background. Bind
// failures are returned to the caller.
func (h *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.server.Addr, err)
	}
	h.listener = ln

	h.logger.Info("Starting HTTP API server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (h *HTTPServer) Addr() string {
	if h.listener == nil {
		return h.server.Addr
	}
	return h.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.source.Status()

	status := "healthy"
	if st.Samples == 0 {
		status = "waiting"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"uptime":     time.Since(h.startTime).String(),
		"service":    serviceName,
		"session_id": h.cfg.SessionID,
		"package":    h.cfg.Package,
		"samples":    st.Samples,
	})
}

func (h *HTTPServer) handleMemory(w http.ResponseWriter, r *http.Request) {
	st := h.source.Status()
	if st.Latest == nil {
		http.Error(w, "No samples yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": h.cfg.SessionID,
		"package":    h.cfg.Package,
		"started":    st.Started.UTC(),
		"samples":    st.Samples,
		"baseline":   st.Baseline,
		"latest":     st.Latest,
		"delta":      st.Delta,
	})
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": serviceName,
		"endpoints": map[string]string{
			"GET /":              "API documentation",
			"GET /health":        "Monitor health check",
			"GET /api/v1/memory": "Latest memory sample and drift from baseline",
			"GET /metrics":       "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
