package handlers

import (
	"net/http"

	"yaomexi/internal/httpkit"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/middleware"
)

// maxUploadBytes caps the multipart form we are willing to buffer.
const maxUploadBytes = 512 << 20

// PostUpload receives one raw clip as multipart form data under "file" and
// registers it for timeline jobs.
func (h *Handler) PostUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		middleware.HandleError(w, r, h.log, errors.Validation("invalid multipart form: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.HandleError(w, r, h.log, errors.ValidationField("file", "missing file part"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	view, err := h.svc.UploadClip(r.Context(), file, header.Size, contentType, header.Filename)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusCreated, view)
}
