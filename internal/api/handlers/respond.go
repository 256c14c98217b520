// Package handlers contains the HTTP endpoint implementations. Handlers
// decode and validate input, call the domain services and encode the
// response; they hold no business rules themselves.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/schoolcms/server/internal/api/apierror"
)

// validate is shared by all handlers. It is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads the request body into dst, translating an oversized
// body into 413 and anything else malformed into 400. It reports whether
// decoding succeeded; on failure the response is already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierror.Write(w, r, http.StatusRequestEntityTooLarge, "request body too large", err, "")
			return false
		}
		apierror.BadRequest(w, r, "invalid JSON body", err)
		return false
	}
	return true
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}
