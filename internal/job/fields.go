package job

import (
	"encoding/json"
	"time"

	"yaomexi/internal/pkg/errors"
)

// Hash field names of a stored job record. The record store keeps flat
// string maps; composite payloads (the timeline clip list) are JSON-encoded
// into a single field here, at the serialization boundary.
const (
	fieldJobID       = "job_id"
	fieldKind        = "job_kind"
	fieldStatus      = "status"
	fieldTemplate    = "template"
	fieldScript      = "script"
	fieldVoice       = "voice"
	fieldClips       = "clips"
	fieldDownloadURL = "download_url"
	fieldArtifactKey = "artifact_key"
	fieldMessage     = "message"
	fieldCreatedAt   = "created_at"
	fieldUpdatedAt   = "updated_at"
)

// Fields flattens the record into the string map stored in Redis.
func (r *Record) Fields() (map[string]string, error) {
	m := map[string]string{
		fieldJobID:       r.ID,
		fieldKind:        string(r.Kind),
		fieldStatus:      string(r.Status),
		fieldDownloadURL: r.DownloadURL,
		fieldArtifactKey: r.ArtifactKey,
		fieldMessage:     r.Message,
		fieldCreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldUpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	switch r.Kind {
	case KindScripted:
		if r.Scripted == nil {
			return nil, errors.Internal("scripted record has no payload")
		}
		m[fieldTemplate] = r.Scripted.Template
		m[fieldScript] = r.Scripted.Script
		m[fieldVoice] = r.Scripted.Voice
	case KindTimeline:
		if r.Timeline == nil {
			return nil, errors.Internal("timeline record has no payload")
		}
		clips, err := json.Marshal(r.Timeline.Clips)
		if err != nil {
			return nil, errors.Wrap(err, "job.fields", "encode clip list")
		}
		m[fieldClips] = string(clips)
	}

	return m, nil
}

// RecordFromFields rebuilds a record from its stored string map. Stored
// data can theoretically be malformed, so every field is re-checked.
func RecordFromFields(fields map[string]string) (*Record, error) {
	if len(fields) == 0 {
		return nil, errors.Internal("empty job field map")
	}

	kind, err := ParseKind(fields[fieldKind])
	if err != nil {
		return nil, err
	}
	status, err := ParseStatus(fields[fieldStatus])
	if err != nil {
		return nil, errors.Wrap(err, "job.decode", "decode status")
	}

	r := &Record{
		ID:          fields[fieldJobID],
		Kind:        kind,
		Status:      status,
		DownloadURL: fields[fieldDownloadURL],
		ArtifactKey: fields[fieldArtifactKey],
		Message:     fields[fieldMessage],
	}
	if r.ID == "" {
		return nil, errors.Internal("job record has no id")
	}

	r.CreatedAt, err = parseTime(fields[fieldCreatedAt])
	if err != nil {
		return nil, errors.Wrap(err, "job.decode", "decode created_at")
	}
	r.UpdatedAt, err = parseTime(fields[fieldUpdatedAt])
	if err != nil {
		return nil, errors.Wrap(err, "job.decode", "decode updated_at")
	}

	switch kind {
	case KindScripted:
		r.Scripted = &ScriptedPayload{
			Template: fields[fieldTemplate],
			Script:   fields[fieldScript],
			Voice:    fields[fieldVoice],
		}
	case KindTimeline:
		var clips []Clip
		if err := json.Unmarshal([]byte(fields[fieldClips]), &clips); err != nil {
			return nil, errors.Wrap(err, "job.decode", "decode clip list")
		}
		r.Timeline = &TimelinePayload{Clips: clips}
	}

	return r, nil
}

// TransitionFields builds the partial field map for a status change.
// updated_at is refreshed on every transition.
func TransitionFields(to Status, result *Result, message string, now time.Time) map[string]string {
	m := map[string]string{
		fieldStatus:    string(to),
		fieldUpdatedAt: now.UTC().Format(time.RFC3339Nano),
	}
	if result != nil {
		m[fieldDownloadURL] = result.DownloadURL
		m[fieldArtifactKey] = result.ArtifactKey
	}
	if message != "" {
		m[fieldMessage] = message
	}
	return m
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
