package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storegate/storegate/internal/domain/fault"
)

// TokenTTL is the validity window of an issued token. There is no
// revocation or refresh mechanism: a leaked token or signing secret is
// only bounded by this window.
const TokenTTL = 24 * time.Hour

// Claims is the payload carried inside a signed token.
// Wire shape: {"sub": <int64>, "username": <string>, "exp": <epoch seconds>}.
type Claims struct {
	Subject   int64  `json:"sub"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"exp"`
}

// GetExpirationTime implements jwt.Claims. A zero ExpiresAt decodes to
// the epoch and therefore always fails validation, fail-closed.
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

// GetIssuedAt implements jwt.Claims.
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) { return nil, nil }

// GetNotBefore implements jwt.Claims.
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

// GetIssuer implements jwt.Claims.
func (c *Claims) GetIssuer() (string, error) { return "", nil }

// GetSubject implements jwt.Claims.
func (c *Claims) GetSubject() (string, error) {
	return strconv.FormatInt(c.Subject, 10), nil
}

// GetAudience implements jwt.Claims.
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// Identity returns the principal encoded in the claims.
func (c *Claims) Identity() *Identity {
	return &Identity{ID: c.Subject, Username: c.Username}
}

// TokenAuthority issues and verifies signed identity tokens using a
// process-wide immutable HMAC secret. Verification is stateless: the
// server holds no session state, and validity is re-derived on every
// call from the token's own contents plus the secret. Instances
// sharing the secret verify each other's tokens.
type TokenAuthority struct {
	secret []byte
	now    func() time.Time
}

// NewTokenAuthority creates a TokenAuthority with the given signing
// secret. Callers must have validated at startup that the secret is
// non-empty; a missing secret is a configuration error, not a runtime
// one.
func NewTokenAuthority(secret []byte) *TokenAuthority {
	return &TokenAuthority{secret: secret, now: time.Now}
}

// Issue builds claims for identity expiring TokenTTL from now and
// returns the HS256-signed compact encoding: three dot-separated
// base64url segments (header, claims, signature).
func (a *TokenAuthority) Issue(identity *Identity) (string, error) {
	claims := &Claims{
		Subject:   identity.ID,
		Username:  identity.Username,
		ExpiresAt: a.now().Add(TokenTTL).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fault.Unexpected("sign token", err)
	}
	return signed, nil
}

// Verify parses token, recomputes the signature with the shared
// secret, and requires an exact match plus an unexpired exp claim.
// Every failure mode — malformed structure, wrong signature, elapsed
// expiry — produces the same Unauthorized outcome; the concrete cause
// is preserved in the wrapped error for internal logging only.
func (a *TokenAuthority) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, &fault.Error{Kind: fault.KindUnauthorized, Msg: "invalid or expired token", Err: err}
	}
	if !parsed.Valid {
		return nil, fault.Unauthorized("invalid or expired token")
	}
	return claims, nil
}
