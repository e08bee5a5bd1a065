package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/storegate/storegate/internal/domain/fault"
)

// ServiceKeyHeader carries the static machine-to-machine secret.
const ServiceKeyHeader = "X-Api-Key"

const bearerPrefix = "Bearer "

// Guard is the per-request decision point. Given the raw header set of
// an incoming request it either produces a Decision or a classified
// rejection, before the protected operation executes. Guards are
// selected explicitly per route and re-evaluated independently on
// every request; nothing is cached across requests.
type Guard interface {
	Evaluate(ctx context.Context, headers http.Header) (*Decision, error)
}

// BearerGuard authenticates requests carrying a signed identity token
// in "Authorization: Bearer <token>" form.
type BearerGuard struct {
	authority *TokenAuthority
}

// NewBearerGuard creates a BearerGuard delegating to authority.
func NewBearerGuard(authority *TokenAuthority) *BearerGuard {
	return &BearerGuard{authority: authority}
}

// Evaluate extracts and verifies the bearer token. A missing header or
// a non-Bearer scheme rejects with a missing-credential cause; a
// present token that fails verification rejects with the authority's
// cause. Both map to 401 outward.
func (g *BearerGuard) Evaluate(_ context.Context, headers http.Header) (*Decision, error) {
	authz := headers.Get("Authorization")
	if authz == "" {
		return nil, fault.Unauthorized("missing authorization header")
	}
	if !strings.HasPrefix(authz, bearerPrefix) {
		return nil, fault.Unauthorized("missing bearer credential")
	}

	claims, err := g.authority.Verify(strings.TrimPrefix(authz, bearerPrefix))
	if err != nil {
		return nil, err
	}
	return &Decision{Identity: claims.Identity()}, nil
}

// ServiceKeyGuard authorizes requests carrying the process-wide static
// service secret. A matching key grants a capability marker with no
// identity.
type ServiceKeyGuard struct {
	secret []byte
}

// NewServiceKeyGuard creates a ServiceKeyGuard for the given secret.
// An empty secret is tolerated at construction so that startup can
// proceed without one; evaluation then reports an operator
// misconfiguration rather than a caller fault.
func NewServiceKeyGuard(secret string) *ServiceKeyGuard {
	return &ServiceKeyGuard{secret: []byte(secret)}
}

// Evaluate compares the presented key byte-for-byte against the
// configured secret in constant time. Mismatch or absence rejects as
// Unauthorized. An unconfigured secret is an Unexpected internal
// failure: the caller cannot fix it, so it must not read as 401.
func (g *ServiceKeyGuard) Evaluate(_ context.Context, headers http.Header) (*Decision, error) {
	if len(g.secret) == 0 {
		return nil, fault.Unexpected("service key not configured", nil)
	}

	presented := headers.Get(ServiceKeyHeader)
	if subtle.ConstantTimeCompare([]byte(presented), g.secret) != 1 {
		return nil, fault.Unauthorized("service key mismatch")
	}
	return &Decision{Service: true}, nil
}

// CredentialFingerprint returns a short, non-reversible fingerprint of
// a presented credential, safe for log correlation. Raw credentials
// are never logged.
func CredentialFingerprint(credential string) string {
	sum := xxhash.Sum64String(credential)
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(buf[:])
}
