package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/storegate/storegate/internal/domain/auth"
	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/fault"
	"github.com/storegate/storegate/internal/service"
)

// APIHandler provides the REST endpoints for users, categories, and
// products. Every protected route names its guard explicitly; the
// guard runs before the handler and a rejection means the handler is
// never invoked.
type APIHandler struct {
	users      *service.UserService
	categories *service.CategoryService
	products   *service.ProductService
	authority  *auth.TokenAuthority
	bearer     auth.Guard
	serviceKey auth.Guard
	metrics    *Metrics
	validate   *validator.Validate
	logger     *slog.Logger
}

// APIOption configures an APIHandler dependency.
type APIOption func(*APIHandler)

// WithUserService sets the user service.
func WithUserService(s *service.UserService) APIOption {
	return func(h *APIHandler) { h.users = s }
}

// WithCategoryService sets the category service.
func WithCategoryService(s *service.CategoryService) APIOption {
	return func(h *APIHandler) { h.categories = s }
}

// WithProductService sets the product service.
func WithProductService(s *service.ProductService) APIOption {
	return func(h *APIHandler) { h.products = s }
}

// WithTokenAuthority sets the token authority used by the login exchange.
func WithTokenAuthority(a *auth.TokenAuthority) APIOption {
	return func(h *APIHandler) { h.authority = a }
}

// WithBearerGuard sets the guard for token-protected routes.
func WithBearerGuard(g auth.Guard) APIOption {
	return func(h *APIHandler) { h.bearer = g }
}

// WithServiceKeyGuard sets the guard for the account-creation route.
func WithServiceKeyGuard(g auth.Guard) APIOption {
	return func(h *APIHandler) { h.serviceKey = g }
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *Metrics) APIOption {
	return func(h *APIHandler) { h.metrics = m }
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(l *slog.Logger) APIOption {
	return func(h *APIHandler) { h.logger = l }
}

// NewAPIHandler creates an APIHandler with the given options.
func NewAPIHandler(opts ...APIOption) *APIHandler {
	h := &APIHandler{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns an http.Handler with all API routes registered.
// Login and health are unauthenticated. Account creation is gated by
// the service key guard; everything else by the bearer guard.
func (h *APIHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /login", h.handleLogin)

	serviceKey := RequireGuard(h.serviceKey, h.metrics)
	mux.Handle("POST /users", serviceKey(http.HandlerFunc(h.handleCreateUser)))

	bearer := RequireGuard(h.bearer, h.metrics)
	mux.Handle("GET /users", bearer(http.HandlerFunc(h.handleListUsers)))
	mux.Handle("GET /users/{id}", bearer(http.HandlerFunc(h.handleGetUser)))
	mux.Handle("PUT /users/{id}", bearer(http.HandlerFunc(h.handleUpdateUser)))
	mux.Handle("DELETE /users/{id}", bearer(http.HandlerFunc(h.handleDeleteUser)))
	mux.Handle("GET /users/{id}/speak", bearer(http.HandlerFunc(h.handleUserSpeak)))

	mux.Handle("POST /categories", bearer(http.HandlerFunc(h.handleCreateCategory)))
	mux.Handle("GET /categories", bearer(http.HandlerFunc(h.handleListCategories)))
	mux.Handle("GET /categories/{id}", bearer(http.HandlerFunc(h.handleGetCategory)))
	mux.Handle("PUT /categories/{id}", bearer(http.HandlerFunc(h.handleUpdateCategory)))
	mux.Handle("DELETE /categories/{id}", bearer(http.HandlerFunc(h.handleDeleteCategory)))
	mux.Handle("GET /categories/{id}/products", bearer(http.HandlerFunc(h.handleListCategoryProducts)))

	mux.Handle("POST /products", bearer(http.HandlerFunc(h.handleCreateProduct)))
	mux.Handle("GET /products/{id}", bearer(http.HandlerFunc(h.handleGetProduct)))

	return mux
}

// pathID extracts and parses the {id} path parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fault.Validation("invalid id")
	}
	return id, nil
}

// decodeValid decodes the request body into v and runs struct validation.
func (h *APIHandler) decodeValid(r *http.Request, v any) error {
	if err := readJSON(r, v); err != nil {
		return fault.Validation("invalid request body")
	}
	if err := h.validate.Struct(v); err != nil {
		return fault.Validation(formatValidationErrors(err))
	}
	return nil
}

// --- Auth handlers ---

// handleLogin performs the login exchange: verify credentials, issue a
// signed token. POST /login
// This is the only path that ever returns a token.
func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		}
		respondError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues("ok").Inc()
	}

	token, err := h.authority.Issue(&auth.Identity{ID: u.ID, Username: u.Username})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

// --- User handlers ---

// handleCreateUser registers a new account. POST /users (service key gated)
func (h *APIHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}

	id, err := h.users.Create(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleListUsers returns all users. GET /users
func (h *APIHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetUser returns a single user. GET /users/{id}
func (h *APIHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// handleUpdateUser replaces username and password. PUT /users/{id}
func (h *APIHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req credentialsRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	u, err := h.users.Update(r.Context(), id, req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// handleDeleteUser removes a user. DELETE /users/{id}
func (h *APIHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUserSpeak returns the user's spoken lines. GET /users/{id}/speak
func (h *APIHandler) handleUserSpeak(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, speakResponse{Speak: u.Speak(), Shout: u.Shout()})
}

// --- Category handlers ---

// handleCreateCategory creates a category. POST /categories
func (h *APIHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	id, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleListCategories returns all categories. GET /categories
func (h *APIHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		resp = append(resp, toCategoryResponse(&categories[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// handleGetCategory returns a single category. GET /categories/{id}
func (h *APIHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	c, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

// handleUpdateCategory renames a category. PUT /categories/{id}
func (h *APIHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req categoryRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	c, err := h.categories.Update(r.Context(), id, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

// handleDeleteCategory removes a category. DELETE /categories/{id}
func (h *APIHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCategoryProducts returns the products in a category.
// GET /categories/{id}/products
func (h *APIHandler) handleListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	products, err := h.products.ListByCategory(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// --- Product handlers ---

// handleCreateProduct creates a product. POST /products
func (h *APIHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := h.decodeValid(r, &req); err != nil {
		respondError(w, err)
		return
	}
	id, err := h.products.Create(r.Context(), catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// handleGetProduct returns a single product. GET /products/{id}
func (h *APIHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}
