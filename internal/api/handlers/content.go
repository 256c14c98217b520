package handlers

import (
	"errors"
	"net/http"

	"github.com/schoolcms/server/internal/api/apierror"
	"github.com/schoolcms/server/internal/domain/content"
	"github.com/schoolcms/server/internal/metrics"
)

// ContentHandler serves one resource collection. The same handler type
// backs articles, events, gallery and organization since their behavior
// only differs by descriptor.
type ContentHandler struct {
	Service *content.Service
	Env     string
}

func NewContentHandler(service *content.Service, env string) *ContentHandler {
	return &ContentHandler{Service: service, Env: env}
}

type listResponse struct {
	Items []content.Record `json:"items"`
}

func (h *ContentHandler) resource() string {
	return h.Service.Descriptor().Path
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List(r.Context())
	if err != nil {
		apierror.Internal(w, r, err, h.Env)
		return
	}
	if records == nil {
		records = []content.Record{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: records})
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierror.BadRequest(w, r, "invalid id", err)
		return
	}

	record, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !decodeJSON(w, r, &payload) {
		return
	}

	record, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.ContentWrites.WithLabelValues(h.resource(), "create").Inc()
	writeJSON(w, http.StatusOK, record)
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierror.BadRequest(w, r, "invalid id", err)
		return
	}

	var payload map[string]any
	if !decodeJSON(w, r, &payload) {
		return
	}

	record, err := h.Service.Update(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.ContentWrites.WithLabelValues(h.resource(), "update").Inc()
	writeJSON(w, http.StatusOK, record)
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		apierror.BadRequest(w, r, "invalid id", err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.ContentWrites.WithLabelValues(h.resource(), "delete").Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ContentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr content.ValidationError
	switch {
	case errors.As(err, &vErr):
		apierror.BadRequest(w, r, vErr.Error(), err)
	case errors.Is(err, content.ErrNotFound):
		apierror.NotFound(w, r, h.resource()+" record not found")
	default:
		apierror.Internal(w, r, err, h.Env)
	}
}
