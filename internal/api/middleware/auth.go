package middleware

import (
	"context"
	"net/http"

	"github.com/schoolcms/server/internal/api/apierror"
	"github.com/schoolcms/server/internal/auth"
)

const claimsKey contextKey = "auth_claims"

// RequireAuth rejects requests without a valid bearer token. Validated
// claims are stored in the request context for handlers.
func RequireAuth(tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				apierror.Unauthorized(w, r, "authentication required", err)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				apierror.Unauthorized(w, r, "invalid or expired token", err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Claims returns the validated token claims, or nil on an unauthenticated
// request.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
