package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"license-gate/internal/license"
)

type API struct {
	Gate    *license.Gatekeeper
	Logger  *log.Logger
	Version string
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")

	w.WriteHeader(status)
	if v == nil || status == http.StatusNoContent {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, msg string) {
	if code == "" {
		code = http.StatusText(status)
	}
	var body apiError
	body.Error.Code = code
	body.Error.Message = msg
	respondJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeAPIError(w, status, "", msg)
}

func respondMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
