// Package respond holds the JSON helpers shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Message: msg})
}

// Decode reads a JSON body into dst, answering 400 itself when it cannot.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Message(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// Error maps ledger errors onto status codes. Anything unrecognised is a 500
// and gets logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *ledger.ValidationError
		conflict *ledger.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusUnprocessableEntity, errorResponse{Message: verr.Error(), Errors: verr.Violations})
	case errors.As(err, &conflict):
		Message(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, ledger.ErrNotFound):
		Message(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Message(w, http.StatusInternalServerError, "internal error")
	}
}

// SplitStorage separates a flush failure from other errors. The mutation
// behind a flush failure did happen, so callers answer with success and
// pass the returned warning along.
func SplitStorage(err error) (warning string, rest error) {
	if err == nil {
		return "", nil
	}

	if ledger.IsStorageError(err) {
		slog.Error("failed to persist state", "error", err)
		return ledger.StorageFailureMessage, nil
	}

	return "", err
}

type warningResponse struct {
	Warning string `json:"warning"`
}

// NoContent answers 204, or 200 with the warning when there is one.
func NoContent(w http.ResponseWriter, warning string) {
	if warning == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	JSON(w, http.StatusOK, warningResponse{Warning: warning})
}
