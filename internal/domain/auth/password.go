package auth

import (
	"context"
	"fmt"
	"runtime"

	"github.com/alexedwards/argon2id"

	"github.com/storegate/storegate/internal/domain/fault"
)

// vaultParams are the Argon2id cost parameters for password hashing.
// OWASP minimum: 46 MiB memory, 1 iteration, 1 lane.
var vaultParams = &argon2id.Params{
	Memory:      47 * 1024, // 47 MiB
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Vault performs one-way password hashing and verification on a
// bounded worker pool. Argon2id is deliberately memory- and CPU-heavy,
// so neither operation may run inline on the request-serving path: one
// slow hash must not stall unrelated concurrent requests.
type Vault struct {
	sem chan struct{}
}

// NewVault creates a Vault with at most workers concurrent hash
// computations. workers <= 0 selects GOMAXPROCS.
func NewVault(workers int) *Vault {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Vault{sem: make(chan struct{}, workers)}
}

type hashResult struct {
	encoded string
	match   bool
	err     error
}

// Hash derives a salted Argon2id hash of password and returns the
// self-describing PHC encoding. A fresh random salt is generated per
// call, so two hashes of the same password differ.
//
// If ctx is cancelled while waiting for a worker slot, Hash returns
// the context error. If ctx is cancelled after the computation has
// started, the worker finishes and its result is discarded: argon2 is
// not safely interruptible mid-computation.
func (v *Vault) Hash(ctx context.Context, password string) (string, error) {
	select {
	case v.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	// Buffered so a detached worker never blocks on send.
	res := make(chan hashResult, 1)
	go func() {
		defer func() { <-v.sem }()
		encoded, err := argon2id.CreateHash(password, vaultParams)
		res <- hashResult{encoded: encoded, err: err}
	}()

	select {
	case r := <-res:
		if r.err != nil {
			return "", fault.Unexpected("hash password", r.err)
		}
		return r.encoded, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Verify re-derives a hash of password using the parameters and salt
// embedded in encodedHash and compares in constant time. It returns
// false both for a wrong password and for a malformed hash string;
// callers must not be able to distinguish the two. Cancellation
// behaves as in Hash.
func (v *Vault) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	select {
	case v.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	res := make(chan hashResult, 1)
	go func() {
		defer func() { <-v.sem }()
		match, err := safeCompare(password, encodedHash)
		res <- hashResult{match: match, err: err}
	}()

	select {
	case r := <-res:
		if r.err != nil {
			// Malformed or unparseable hash: indistinguishable from a
			// wrong password to prevent a hash-format oracle.
			return false, nil
		}
		return r.match, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// safeCompare wraps argon2id.ComparePasswordAndHash with panic
// recovery. The underlying argon2 library panics on hashes encoding
// invalid parameters (t=0, p=0); those become errors instead.
func safeCompare(password, encodedHash string) (match bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = false
			err = fmt.Errorf("invalid argon2id hash parameters: %v", r)
		}
	}()
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}
