// Package httpx maps service results and typed errors onto the wire.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gshelgaas/bankcards/internal/apperr"
)

type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, APIError{Error: msg, Code: code})
}

// Error maps an apperr kind to its HTTP status. Anything untyped is
// a 500 with the detail kept out of the response body.
func Error(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case apperr.KindForbidden:
		WriteError(w, http.StatusForbidden, "forbidden", err.Error())
	case apperr.KindConflict:
		WriteError(w, http.StatusConflict, "conflict", err.Error())
	case apperr.KindInvalidArgument:
		WriteError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case apperr.KindUnauthorized:
		WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		slog.Error("internal error", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
