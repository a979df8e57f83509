// Package job holds the domain model of the video pipeline: the job
// record, its lifecycle state machine, the kind-specific payloads, and the
// field-map codec used at the record store boundary.
package job

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"yaomexi/internal/pkg/errors"
)

// Kind selects the rendering path and the required payload fields.
type Kind string

const (
	KindScripted Kind = "SCRIPTED"
	KindTimeline Kind = "TIMELINE"
)

// ParseKind converts a stored string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindScripted, KindTimeline:
		return k, nil
	default:
		return "", errors.Newf(errors.CodeInternal, "unknown job kind %q", s)
	}
}

// Record is one submitted job. Exactly one of Scripted/Timeline is set,
// matching Kind. The submission service creates records; only the worker
// mutates Status, DownloadURL, ArtifactKey and Message afterwards.
//
// DownloadURL is the client-facing location of the artifact; ArtifactKey
// is the storage-provider key used to retrieve it (on Drive the two are
// unrelated). Both are non-empty iff Status is DONE.
type Record struct {
	ID          string
	Kind        Kind
	Status      Status
	Scripted    *ScriptedPayload
	Timeline    *TimelinePayload
	DownloadURL string
	ArtifactKey string
	Message     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Result points at a finished artifact.
type Result struct {
	DownloadURL string
	ArtifactKey string
}

// ClientDownloadURL is where a finished job's artifact is served.
func ClientDownloadURL(jobID string) string {
	return "/videos/" + jobID + ".mp4"
}

// ArtifactObjectKey is the storage key the worker renders artifacts to.
// Providers that rewrite keys on upload (gdrive) report the real key back,
// which is then persisted on the record.
func ArtifactObjectKey(jobID string) string {
	return "videos/" + jobID + ".mp4"
}

// NewID generates a fresh opaque job or upload identifier.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewScripted builds a fresh QUEUED scripted record.
func NewScripted(p ScriptedPayload, now time.Time) *Record {
	return &Record{
		ID:        NewID(),
		Kind:      KindScripted,
		Status:    StatusQueued,
		Scripted:  &p,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTimeline builds a fresh QUEUED timeline record.
func NewTimeline(p TimelinePayload, now time.Time) *Record {
	return &Record{
		ID:        NewID(),
		Kind:      KindTimeline,
		Status:    StatusQueued,
		Timeline:  &p,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StatusView is what polling clients see.
type StatusView struct {
	JobID       string `json:"job_id"`
	Status      Status `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
	Message     string `json:"message,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// View projects the record into its client-facing shape.
func (r *Record) View() StatusView {
	return StatusView{
		JobID:       r.ID,
		Status:      r.Status,
		DownloadURL: r.DownloadURL,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
