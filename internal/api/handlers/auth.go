package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/schoolcms/server/internal/api/apierror"
	"github.com/schoolcms/server/internal/auth"
	"github.com/schoolcms/server/internal/domain/users"
	"github.com/schoolcms/server/internal/metrics"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.JWTManager
	Env    string
}

func NewAuthHandler(userService *users.Service, tokens *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Users: userService, Tokens: tokens, Env: env}
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges admin credentials for a signed token. Unknown usernames
// and wrong passwords produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		apierror.BadRequest(w, r, "username and password are required", err)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			apierror.Unauthorized(w, r, "invalid username or password", err)
			return
		}
		apierror.Internal(w, r, err, h.Env)
		return
	}

	token, err := h.Tokens.Generate(strconv.FormatInt(user.ID, 10), user.Username)
	if err != nil {
		apierror.Internal(w, r, err, h.Env)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.Tokens.Expiry()).UTC(),
	})
}
