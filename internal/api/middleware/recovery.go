package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/schoolcms/server/internal/api/apierror"
)

// Recovery converts a handler panic into a 500 response instead of
// killing the connection. The stack trace goes to the log only.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					zerolog.Ctx(r.Context()).Error().
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Str("path", r.URL.Path).
						Msg("handler panicked")
					apierror.Write(w, r, http.StatusInternalServerError, "internal server error", nil, "")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
