package middleware

import "net/http"

// JSONMaxBodySize caps JSON request bodies at 2MB.
const JSONMaxBodySize int64 = 2 << 20

// RequestSize wraps the body with http.MaxBytesReader so oversized
// payloads fail with 413 when read.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// JSONRequestSize applies the standard JSON body cap.
func JSONRequestSize() func(http.Handler) http.Handler {
	return RequestSize(JSONMaxBodySize)
}
