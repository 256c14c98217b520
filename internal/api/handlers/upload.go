package handlers

import (
	"errors"
	"net/http"

	"github.com/schoolcms/server/internal/api/apierror"
	"github.com/schoolcms/server/internal/metrics"
	"github.com/schoolcms/server/internal/uploads"
)

type UploadHandler struct {
	Store    *uploads.Store
	MaxBytes int64
	Env      string
}

func NewUploadHandler(store *uploads.Store, maxBytes int64, env string) *UploadHandler {
	return &UploadHandler{Store: store, MaxBytes: maxBytes, Env: env}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Image accepts a multipart form with an "image" field, stores the file
// and returns its absolute public URL.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierror.Write(w, r, http.StatusRequestEntityTooLarge, "uploaded file too large", err, "")
			return
		}
		apierror.BadRequest(w, r, "multipart field \"image\" is required", err)
		return
	}
	defer func() { _ = file.Close() }()

	ref, err := h.Store.Save(file, header.Filename)
	if err != nil {
		apierror.Internal(w, r, err, h.Env)
		return
	}

	metrics.UploadsStored.Inc()
	if header.Size > 0 {
		metrics.UploadBytes.Observe(float64(header.Size))
	}
	writeJSON(w, http.StatusOK, uploadResponse{URL: h.Store.PublicURL(ref)})
}
