package http

import "net/http"

// handleHealth reports liveness. Stays unauthenticated so probes work
// before any credentials exist.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
