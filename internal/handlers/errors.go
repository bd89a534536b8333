package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/repo"
	"github.com/crucial707/microblog/internal/translate"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string][]string, status int) {
	out := map[string]any{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleError maps an application error to its HTTP response.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs forms.Errors
	switch {
	case errors.As(err, &fieldErrs):
		JSONValidationError(w, "validation failed", fieldErrs, http.StatusBadRequest)
	case errors.Is(err, app.ErrNotFound):
		JSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, app.ErrInvalidCredentials):
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, app.ErrInvalidToken):
		JSONError(w, "invalid or expired token", http.StatusUnauthorized)
	case errors.Is(err, repo.ErrSelfFollow):
		JSONError(w, "you cannot follow yourself", http.StatusBadRequest)
	case errors.Is(err, translate.ErrNotConfigured):
		JSONError(w, "translation is not available", http.StatusServiceUnavailable)
	default:
		slog.Error("request failed",
			"request_id", chimw.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

// decode reads a JSON body into v, answering 400 (or 413 past the body cap)
// itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		JSONError(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// pageParam reads ?page=. Missing or invalid values mean the first page.
func pageParam(r *http.Request) int {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		return p
	}
	return 1
}
