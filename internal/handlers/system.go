package handlers

import (
	"net/http"
	"time"

	"license-gate/internal/middleware"
)

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (a *API) Live(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"alive": true})
}

// Reports the license decision for the requesting host and where the allow-list came from.
func (a *API) LicenseStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, http.MethodGet)
		return
	}
	d, ok := middleware.Decision(r)
	if !ok {
		if a.Gate == nil {
			respondError(w, http.StatusServiceUnavailable, "license gate not configured")
			return
		}
		d = a.Gate.Check(r.Context(), r.Host)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"decision":   d,
		"version":    a.Version,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	})
}
