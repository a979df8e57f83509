package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"yaomexi/internal/httpkit"
	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/middleware"
)

// PostScriptedVideo accepts a scripted video request and answers 202 with
// the queued job's status view.
func (h *Handler) PostScriptedVideo(w http.ResponseWriter, r *http.Request) {
	var p job.ScriptedPayload
	if err := httpkit.DecodeJSON(r, &p); err != nil {
		middleware.HandleError(w, r, h.log, errors.Validation("invalid request body: "+err.Error()))
		return
	}

	view, err := h.svc.SubmitScripted(r.Context(), p)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusAccepted, view)
}

// PostTimelineVideo accepts a timeline composition request and answers 202
// with the queued job's status view.
func (h *Handler) PostTimelineVideo(w http.ResponseWriter, r *http.Request) {
	var p job.TimelinePayload
	if err := httpkit.DecodeJSON(r, &p); err != nil {
		middleware.HandleError(w, r, h.log, errors.Validation("invalid request body: "+err.Error()))
		return
	}

	view, err := h.svc.SubmitTimeline(r.Context(), p)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	httpkit.WriteJSON(w, http.StatusAccepted, view)
}

// DownloadVideo streams a finished artifact. Jobs that exist but are not
// DONE yield 409; missing jobs or vanished objects yield 404.
func (h *Handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	rc, contentType, size, err := h.svc.Artifact(r.Context(), jobID)
	if err != nil {
		middleware.HandleError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "yaomexi_"+jobID+".mp4"))

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; just log the broken stream.
		h.log.FromContext(r.Context()).Warn("video stream interrupted",
			"job_id", jobID,
			"error", err.Error(),
		)
	}
}
