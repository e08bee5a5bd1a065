// Package http provides the inbound HTTP transport adapter: REST
// handlers, the guard middleware that gates them, and the server
// lifecycle.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/storegate/storegate/internal/ctxkey"
	"github.com/storegate/storegate/internal/domain/auth"
	"github.com/storegate/storegate/internal/domain/fault"
)

// LoggerKey is the context key for the enriched logger.
// Uses the shared key type from ctxkey to allow cross-package access
// without import cycles.
var LoggerKey = ctxkey.LoggerKey{}

// RequestIDKey is the context key for the request ID.
var RequestIDKey = ctxkey.RequestIDKey{}

// IdentityKey is the context key for the authenticated identity.
var IdentityKey = ctxkey.IdentityKey{}

// RequestIDMiddleware extracts or generates a request ID and enriches
// the logger. The request ID is stored in context using RequestIDKey;
// an enriched logger with the request_id field is stored using
// LoggerKey.
func RequestIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			enrichedLogger := logger.With("request_id", requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = context.WithValue(ctx, LoggerKey, enrichedLogger)

			// Set response header for correlation
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFromContext retrieves the enriched logger from context.
// Returns slog.Default() if no logger is in context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// IdentityFromContext retrieves the authenticated identity set by the
// bearer guard middleware. Returns nil if the request was not
// bearer-authenticated.
func IdentityFromContext(ctx context.Context) *auth.Identity {
	if identity, ok := ctx.Value(IdentityKey).(*auth.Identity); ok {
		return identity
	}
	return nil
}

// RequireGuard wraps a handler with a per-request authentication
// decision. The guard is evaluated on every request before the
// protected handler; a rejection short-circuits with the mapped status
// and the handler is never invoked. On success the decision's identity
// (if any) is attached to the request context.
func RequireGuard(guard auth.Guard, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := guard.Evaluate(r.Context(), r.Header)
			if err != nil {
				kind := fault.KindOf(err)
				LoggerFromContext(r.Context()).Warn("request rejected",
					"path", r.URL.Path,
					"reason", err.Error(),
					"kind", kind.String(),
				)
				if metrics != nil {
					metrics.AuthRejections.WithLabelValues(kind.String()).Inc()
				}
				respondError(w, err)
				return
			}

			ctx := r.Context()
			if decision.Identity != nil {
				ctx = context.WithValue(ctx, IdentityKey, decision.Identity)
			}
			if decision.Service {
				ctx = context.WithValue(ctx, ctxkey.ServiceCallKey{}, true)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
