// Package apierror writes the JSON error body every endpoint shares:
//
//	{"error": "human readable message"}
//
// Client errors are logged at warn level, server errors at error level,
// using the request-scoped logger.
package apierror

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type body struct {
	Error string `json:"error"`
}

// Write emits the error body with the given status. message is what the
// client sees; err is the underlying cause and only ever reaches the log.
// In development and test environments a 5xx message is replaced with the
// cause to ease debugging.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string) {
	if status >= 500 && err != nil && (env == "development" || env == "test") {
		message = err.Error()
	}
	if message == "" {
		message = http.StatusText(status)
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Error: message})
}

// BadRequest reports a malformed or invalid request.
func BadRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	Write(w, r, http.StatusBadRequest, message, err, "")
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string, err error) {
	Write(w, r, http.StatusUnauthorized, message, err, "")
}

// NotFound reports a missing record.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Write(w, r, http.StatusNotFound, message, nil, "")
}

// Internal reports a server failure. The cause goes to the log, the client
// sees a generic message unless env is development or test.
func Internal(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusInternalServerError, "internal server error", err, env)
}
