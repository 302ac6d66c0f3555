package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackzampolin/langsheet/internal/export"
	"github.com/jackzampolin/langsheet/internal/profile"
	"github.com/jackzampolin/langsheet/internal/schema"
	"github.com/jackzampolin/langsheet/internal/segment"
	"github.com/jackzampolin/langsheet/internal/session"
	"github.com/jackzampolin/langsheet/internal/svcctx"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr *profile.ValidationError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnknownLanguage):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrProtectedKey):
		return http.StatusConflict
	case errors.Is(err, export.ErrEmptyInput), errors.Is(err, session.ErrNothingLoaded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrUnknownKey),
		errors.Is(err, session.ErrEmptyHeader),
		errors.Is(err, segment.ErrOutOfRange),
		errors.Is(err, segment.ErrNotFlat),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with the status that matches its kind.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// sessionFor resolves the {id} path value to a live session.
func sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	store := svcctx.SessionsFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "session store not initialized")
		return nil, false
	}

	s, err := store.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return s, true
}

// sessionPath builds a session route for CLI clients.
func sessionPath(id, suffix string) string {
	return "/api/sessions/" + id + suffix
}
