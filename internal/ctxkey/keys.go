// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// LoggerKey is the context key type for the enriched logger.
// Used by HTTP middleware to store and retrieve the logger with the request_id field.
type LoggerKey struct{}

// RequestIDKey is the context key type for the request ID.
type RequestIDKey struct{}

// IdentityKey is the context key type for the authenticated identity.
// Set by the bearer guard middleware after a successful token verification.
type IdentityKey struct{}

// ServiceCallKey is the context key type for the service-key capability marker.
// Set by the service key guard middleware; carries no identity.
type ServiceCallKey struct{}
