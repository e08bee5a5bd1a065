// Package auth contains the domain types and logic for authentication:
// password hashing, signed token issuance and verification, and the
// per-request guards that gate protected operations.
package auth

// Identity represents an authenticated principal derived from a
// verified credential. Immutable for the lifetime of a request.
type Identity struct {
	// ID is the subject identifier (the stored user's ID).
	ID int64
	// Username is the display name for this identity.
	Username string
}

// Decision is the accept outcome of evaluating a request's presented
// credential. Rejections are reported as classified errors, not as a
// Decision. Exactly one of the fields is meaningful per guard variant.
type Decision struct {
	// Identity is set by the bearer guard on successful verification.
	Identity *Identity
	// Service is set by the service key guard. It is a capability
	// marker only: a matching static key proves nothing about who the
	// caller is.
	Service bool
}
