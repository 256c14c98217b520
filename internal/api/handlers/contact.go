package handlers

import (
	"net/http"

	"github.com/schoolcms/server/internal/api/apierror"
	"github.com/schoolcms/server/internal/email"
)

type ContactHandler struct {
	Email *email.Service
	Env   string
}

func NewContactHandler(emailService *email.Service, env string) *ContactHandler {
	return &ContactHandler{Email: emailService, Env: env}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=128"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// Submit forwards a contact form submission to the site operators.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		apierror.BadRequest(w, r, "name, email, subject and message are required", err)
		return
	}

	err := h.Email.SendContactMessage(r.Context(), email.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Message,
	})
	if err != nil {
		apierror.Internal(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
