package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/storegate/storegate/internal/domain/fault"
)

// respondJSON writes a JSON response with the given status code and data.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

// respondError maps a classified error to its outward status and body.
// This is the single translation point from the fault taxonomy to the
// transport: Validation messages are echoed, everything else renders a
// generic body.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, fault.HTTPStatus(err), map[string]string{
		"error": fault.HTTPMessage(err),
	})
}

// readJSON decodes the request body into v.
func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
