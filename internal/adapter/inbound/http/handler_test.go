package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storegate/storegate/internal/adapter/outbound/memory"
	"github.com/storegate/storegate/internal/domain/auth"
	"github.com/storegate/storegate/internal/service"
)

// stubVault avoids argon2 work in transport-level tests. Hashing and
// verification semantics are covered in the auth package tests.
type stubVault struct{}

func (stubVault) Hash(_ context.Context, password string) (string, error) {
	return "stub$" + password, nil
}

func (stubVault) Verify(_ context.Context, password, encodedHash string) (bool, error) {
	return encodedHash == "stub$"+password, nil
}

const (
	testSigningSecret = "test-signing-secret"
	testServiceKey    = "test-service-key"
)

func newTestHandler(t *testing.T, opts ...APIOption) *APIHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	authority := auth.NewTokenAuthority([]byte(testSigningSecret))

	base := []APIOption{
		WithUserService(service.NewUserService(memory.NewUserStore(), stubVault{}, logger)),
		WithCategoryService(service.NewCategoryService(memory.NewCategoryStore(), logger)),
		WithProductService(service.NewProductService(memory.NewProductStore(), logger)),
		WithTokenAuthority(authority),
		WithBearerGuard(auth.NewBearerGuard(authority)),
		WithServiceKeyGuard(auth.NewServiceKeyGuard(testServiceKey)),
		WithHandlerLogger(logger),
	}
	return NewAPIHandler(append(base, opts...)...)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, h http.Handler, username, password string) int64 {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/users",
		map[string]string{"username": username, "password": password},
		map[string]string{auth.ServiceKeyHeader: testServiceKey},
	)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func loginToken(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/login",
		map[string]string{"username": username, "password": password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestHealthUnauthenticated(t *testing.T) {
	h := newTestHandler(t).Routes()

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	h := newTestHandler(t).Routes()
	createUser(t, h, "alice", "correct-horse")

	token := loginToken(t, h, "alice", "correct-horse")
	if token == "" {
		t.Fatal("token is empty")
	}

	rec := doJSON(t, h, http.MethodGet, "/users", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("user listing leaks password material: %s", rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandler(t).Routes()
	createUser(t, h, "alice", "correct-horse")

	rec := doJSON(t, h, http.MethodPost, "/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("rejected login must not carry a token: %s", rec.Body.String())
	}
}

func TestLoginUnknownUserSameAsWrongPassword(t *testing.T) {
	h := newTestHandler(t).Routes()
	createUser(t, h, "alice", "correct-horse")

	wrongPass := doJSON(t, h, http.MethodPost, "/login",
		map[string]string{"username": "alice", "password": "nope"}, nil)
	unknown := doJSON(t, h, http.MethodPost, "/login",
		map[string]string{"username": "nobody", "password": "nope"}, nil)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want both %d", wrongPass.Code, unknown.Code, http.StatusUnauthorized)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("bodies differ, account existence is observable: %q vs %q",
			wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestBearerGuardRejections(t *testing.T) {
	h := newTestHandler(t).Routes()

	tests := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"bare token no scheme", "not-a-bearer-line"},
		{"garbage token", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.authz != "" {
				headers["Authorization"] = tt.authz
			}
			rec := doJSON(t, h, http.MethodGet, "/users", nil, headers)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != "unauthorized" {
				t.Fatalf("error = %q, want generic %q", body["error"], "unauthorized")
			}
		})
	}
}

func TestGuardRejectionSkipsHandler(t *testing.T) {
	authority := auth.NewTokenAuthority([]byte(testSigningSecret))
	invoked := false

	guard := RequireGuard(auth.NewBearerGuard(authority), nil)
	protected := guard(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		invoked = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if invoked {
		t.Fatal("protected handler ran despite guard rejection")
	}
}

func TestServiceKeyUnconfigured(t *testing.T) {
	h := newTestHandler(t, WithServiceKeyGuard(auth.NewServiceKeyGuard(""))).Routes()

	rec := doJSON(t, h, http.MethodPost, "/users",
		map[string]string{"username": "alice", "password": "pw"},
		map[string]string{auth.ServiceKeyHeader: "anything"},
	)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "internal error" {
		t.Fatalf("error = %q, misconfiguration detail must not leak", body["error"])
	}
}

func TestServiceKeyMismatch(t *testing.T) {
	h := newTestHandler(t).Routes()

	rec := doJSON(t, h, http.MethodPost, "/users",
		map[string]string{"username": "alice", "password": "pw"},
		map[string]string{auth.ServiceKeyHeader: "wrong"},
	)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreateUserValidation(t *testing.T) {
	h := newTestHandler(t).Routes()

	rec := doJSON(t, h, http.MethodPost, "/users",
		map[string]string{"username": "", "password": ""},
		map[string]string{auth.ServiceKeyHeader: testServiceKey},
	)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "required") {
		t.Fatalf("validation message not echoed: %s", rec.Body.String())
	}
}

func TestUserCRUD(t *testing.T) {
	h := newTestHandler(t).Routes()
	id := createUser(t, h, "alice", "correct-horse")
	token := loginToken(t, h, "alice", "correct-horse")
	authz := map[string]string{"Authorization": "Bearer " + token}

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, authz)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	var u userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Username != "alice" || u.Greet != "Hello alice" {
		t.Fatalf("user = %+v", u)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d/speak", id), nil, authz)
	if rec.Code != http.StatusOK {
		t.Fatalf("speak: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/users/%d", id),
		map[string]string{"username": "alicia", "password": "new-pass"}, authz)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, authz)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, authz)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestInvalidPathID(t *testing.T) {
	h := newTestHandler(t).Routes()
	createUser(t, h, "alice", "correct-horse")
	token := loginToken(t, h, "alice", "correct-horse")

	rec := doJSON(t, h, http.MethodGet, "/users/abc", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCatalogFlow(t *testing.T) {
	h := newTestHandler(t).Routes()
	createUser(t, h, "alice", "correct-horse")
	token := loginToken(t, h, "alice", "correct-horse")
	authz := map[string]string{"Authorization": "Bearer " + token}

	rec := doJSON(t, h, http.MethodPost, "/categories",
		map[string]string{"name": "books"}, authz)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created createdResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, h, http.MethodPost, "/products", map[string]any{
		"name":        "golang book",
		"description": "a book",
		"price":       29.99,
		"stock":       3,
		"category_id": created.ID,
	}, authz)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/categories/%d/products", created.ID), nil, authz)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: status = %d", rec.Code)
	}
	var products []productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 1 || products[0].Name != "golang book" {
		t.Fatalf("products = %+v", products)
	}

	rec = doJSON(t, h, http.MethodPost, "/products", map[string]any{
		"name":        "invalid",
		"price":       -1,
		"category_id": created.ID,
	}, authz)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RequestIDMiddleware(logger)(inner)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("X-Request-ID = %q, want %q", got, "req-123")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("request ID not generated")
	}
}
