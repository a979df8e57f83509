package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"yaomexi/internal/httpkit"
	"yaomexi/internal/pkg/middleware"
)

// GetJob reports the current status of a job. Polling a job never mutates
// it; expired records answer 404.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	view, err := h.svc.GetStatus(r.Context(), jobID)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusOK, view)
}
