package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPTransport owns the HTTP server lifecycle: it assembles the
// middleware chain around the API handler, serves /metrics from its
// own registry, and shuts down gracefully on context cancellation.
type HTTPTransport struct {
	api     *APIHandler
	server  *http.Server
	addr    string
	logger  *slog.Logger
	tracing bool
	metrics *Metrics
}

// Option is a functional option for configuring HTTPTransport.
type Option func(*HTTPTransport)

// WithAddr sets the listen address for the HTTP server.
// Default is "127.0.0.1:8080" (localhost only).
func WithAddr(addr string) Option {
	return func(t *HTTPTransport) {
		t.addr = addr
	}
}

// WithLogger sets the logger for the HTTP transport.
func WithLogger(logger *slog.Logger) Option {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// WithTracing enables the per-request tracing middleware.
func WithTracing(enabled bool) Option {
	return func(t *HTTPTransport) {
		t.tracing = enabled
	}
}

// NewHTTPTransport creates an HTTP transport serving the given API handler.
func NewHTTPTransport(api *APIHandler, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		api:    api,
		addr:   "127.0.0.1:8080",
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start begins accepting HTTP connections. It blocks until the context
// is cancelled or the server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	t.metrics = NewMetrics(reg)
	t.api.metrics = t.metrics

	// Middleware order (outermost first):
	// 1. MetricsMiddleware - record duration and status for the full request
	// 2. TracingMiddleware - one server span per request (optional)
	// 3. RequestIDMiddleware - extract/generate request ID, enrich logger
	// 4. API routes - guards run per-route inside the mux
	var handler http.Handler = t.api.Routes()
	handler = RequestIDMiddleware(t.logger)(handler)
	if t.tracing {
		handler = TracingMiddleware(handler)
	}
	handler = MetricsMiddleware(t.metrics)(handler)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	}))
	mux.Handle("/", handler)

	t.server = &http.Server{
		Addr:              t.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		t.logger.Info("starting HTTP server", "addr", t.addr)
		if err := t.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		t.logger.Info("context cancelled, shutting down HTTP server")
		return t.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (t *HTTPTransport) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := t.server.Shutdown(ctx); err != nil {
		t.logger.Error("error during server shutdown", "error", err)
		return err
	}

	t.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the transport.
func (t *HTTPTransport) Close() error {
	if t.server == nil {
		return nil
	}
	return t.shutdown()
}
