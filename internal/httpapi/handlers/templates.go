package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"yaomexi/internal/httpkit"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/middleware"
	"yaomexi/internal/templates"
)

type createTemplateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PostTemplate registers a template id for scripted submissions.
func (h *Handler) PostTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		middleware.HandleError(w, r, h.log, errors.Validation("invalid request body: "+err.Error()))
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if len(req.ID) < 3 {
		middleware.HandleError(w, r, h.log, errors.ValidationField("id", "template id must be at least 3 characters"))
		return
	}
	if req.Name == "" {
		req.Name = req.ID
	}

	t := &templates.Template{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.templates.Create(r.Context(), t); err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusCreated, t)
}

// ListTemplates returns all live templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.templates.List(r.Context())
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	if list == nil {
		list = []templates.Template{}
	}
	httpkit.WriteJSON(w, http.StatusOK, list)
}

// GetTemplate returns one template, deleted or not.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")

	t, err := h.templates.Get(r.Context(), id)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusOK, t)
}

// DeleteTemplate soft-deletes a template; queued jobs that already passed
// validation against it are unaffected.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")

	if err := h.templates.Delete(r.Context(), id); err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
