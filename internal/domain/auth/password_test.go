package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestVaultHashVerifyRoundTrip(t *testing.T) {
	v := NewVault(2)
	ctx := context.Background()

	hash, err := v.Hash(ctx, "correct-horse")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash not in PHC format: %q", hash)
	}

	match, err := v.Verify(ctx, "correct-horse", hash)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !match {
		t.Error("Verify() = false for correct password")
	}

	match, err = v.Verify(ctx, "battery-staple", hash)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if match {
		t.Error("Verify() = true for wrong password")
	}
}

func TestVaultHashSaltsDiffer(t *testing.T) {
	v := NewVault(2)
	ctx := context.Background()

	h1, err := v.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	h2, err := v.Hash(ctx, "same-password")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salt not random")
	}

	for _, h := range []string{h1, h2} {
		match, err := v.Verify(ctx, "same-password", h)
		if err != nil || !match {
			t.Errorf("Verify(%q) = (%v, %v), want (true, nil)", h, match, err)
		}
	}
}

func TestVaultVerifyMalformedHash(t *testing.T) {
	v := NewVault(1)
	ctx := context.Background()

	// Wrong password and malformed hash must be indistinguishable:
	// both return (false, nil).
	tests := []string{
		"",
		"not-a-hash",
		"$argon2id$garbage",
		"$argon2id$v=19$m=0,t=0,p=0$AAAA$AAAA",
	}
	for _, h := range tests {
		match, err := v.Verify(ctx, "whatever", h)
		if err != nil {
			t.Errorf("Verify(malformed %q) error = %v, want nil", h, err)
		}
		if match {
			t.Errorf("Verify(malformed %q) = true", h)
		}
	}
}

func TestVaultCancelledContext(t *testing.T) {
	v := NewVault(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := v.Hash(ctx, "pw"); err != context.Canceled {
		t.Errorf("Hash() with cancelled ctx = %v, want context.Canceled", err)
	}
	if _, err := v.Verify(ctx, "pw", "$argon2id$x"); err != context.Canceled {
		t.Errorf("Verify() with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestVaultDetachOnCancel(t *testing.T) {
	v := NewVault(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := v.Hash(ctx, "pw")
		done <- err
	}()

	// Cancel while the worker is (most likely) mid-computation. The
	// caller must return promptly; the detached worker finishes on its
	// own and releases its slot (goleak verifies no goroutine sticks).
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			t.Errorf("Hash() after cancel = %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("caller did not return after cancellation")
	}

	// The pool must still be usable afterwards.
	if _, err := v.Hash(context.Background(), "pw2"); err != nil {
		t.Errorf("Hash() after detach = %v", err)
	}
}
