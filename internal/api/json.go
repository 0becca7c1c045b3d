package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/rounded/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// errResponse is the body of every non-2xx response. Code is stable and
// meant for clients; Error is for humans.
type errResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeOutOfRange   = "out_of_range"
	codeConflict     = "conflict"
	codeInternal     = "internal"
)

func errorBody(code, msg string) errResponse {
	return errResponse{Code: code, Error: msg}
}

// statusMapping pairs a sentinel with the response it produces. Order
// matters: the first sentinel matched by errors.Is wins.
var statusMapping = []struct {
	sentinel error
	status   int
	code     string
	message  string
}{
	{apperr.ErrOutOfRange, http.StatusNotFound, codeOutOfRange, "repository index out of range"},
	{apperr.ErrNotFound, http.StatusNotFound, codeNotFound, "not found"},
	{apperr.ErrConflict, http.StatusConflict, codeConflict, "refresh already in progress"},
	{apperr.ErrValidation, http.StatusBadRequest, codeBadRequest, ""},
}

// writeServiceError maps catalog sentinels to status codes. Unknown errors
// are logged and reported as 500 without leaking their text.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	for _, m := range statusMapping {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		writeJSON(w, m.status, errorBody(m.code, msg))
		return
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody(codeInternal, "internal error"))
}
