package job

import (
	"strings"
	"testing"
	"time"
)

func TestScriptedFieldsRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rec := NewScripted(validScripted(), now)

	fields, err := rec.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}

	got, err := RecordFromFields(fields)
	if err != nil {
		t.Fatalf("RecordFromFields: %v", err)
	}

	if got.ID != rec.ID {
		t.Errorf("id = %s, want %s", got.ID, rec.ID)
	}
	if got.Kind != KindScripted {
		t.Errorf("kind = %s, want %s", got.Kind, KindScripted)
	}
	if got.Status != StatusQueued {
		t.Errorf("status = %s, want %s", got.Status, StatusQueued)
	}
	if got.Scripted == nil {
		t.Fatal("expected scripted payload")
	}
	if *got.Scripted != *rec.Scripted {
		t.Errorf("payload = %+v, want %+v", *got.Scripted, *rec.Scripted)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestTimelineFieldsRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	rec := NewTimeline(TimelinePayload{Clips: []Clip{
		{UploadID: "u1", Duration: 3.2},
		{UploadID: "u2", Duration: 1.8},
	}}, now)

	fields, err := rec.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}

	got, err := RecordFromFields(fields)
	if err != nil {
		t.Fatalf("RecordFromFields: %v", err)
	}

	if got.Timeline == nil {
		t.Fatal("expected timeline payload")
	}
	if len(got.Timeline.Clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(got.Timeline.Clips))
	}
	if got.Timeline.Clips[0] != rec.Timeline.Clips[0] || got.Timeline.Clips[1] != rec.Timeline.Clips[1] {
		t.Errorf("clips = %+v, want %+v", got.Timeline.Clips, rec.Timeline.Clips)
	}
}

func TestFieldsRejectsMissingPayload(t *testing.T) {
	rec := &Record{ID: NewID(), Kind: KindScripted, Status: StatusQueued}
	if _, err := rec.Fields(); err == nil {
		t.Error("expected error for scripted record without payload")
	}

	rec = &Record{ID: NewID(), Kind: KindTimeline, Status: StatusQueued}
	if _, err := rec.Fields(); err == nil {
		t.Error("expected error for timeline record without payload")
	}
}

func TestRecordFromFieldsRejectsBadData(t *testing.T) {
	base := func() map[string]string {
		rec := NewScripted(validScripted(), time.Now().UTC())
		fields, err := rec.Fields()
		if err != nil {
			t.Fatalf("Fields: %v", err)
		}
		return fields
	}

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"empty map", func(m map[string]string) { clear(m) }},
		{"missing id", func(m map[string]string) { m["job_id"] = "" }},
		{"bad kind", func(m map[string]string) { m["job_kind"] = "SLIDESHOW" }},
		{"bad status", func(m map[string]string) { m["status"] = "RENDERING" }},
		{"bad created_at", func(m map[string]string) { m["created_at"] = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := base()
			tt.mutate(fields)
			if _, err := RecordFromFields(fields); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestTransitionFields(t *testing.T) {
	now := time.Now().UTC()

	t.Run("processing carries no result", func(t *testing.T) {
		m := TransitionFields(StatusProcessing, nil, "", now)
		if m["status"] != string(StatusProcessing) {
			t.Errorf("status = %s", m["status"])
		}
		if _, ok := m["download_url"]; ok {
			t.Error("download_url must not be written without a result")
		}
		if _, ok := m["message"]; ok {
			t.Error("message must not be written when empty")
		}
	})

	t.Run("done carries result and message", func(t *testing.T) {
		res := &Result{DownloadURL: "/videos/abc.mp4", ArtifactKey: "videos/abc.mp4"}
		m := TransitionFields(StatusDone, res, "render complete", now)
		if m["download_url"] != res.DownloadURL {
			t.Errorf("download_url = %s", m["download_url"])
		}
		if m["artifact_key"] != res.ArtifactKey {
			t.Errorf("artifact_key = %s", m["artifact_key"])
		}
		if m["message"] != "render complete" {
			t.Errorf("message = %s", m["message"])
		}
	})
}

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) != 32 {
		t.Errorf("expected 32-char id, got %d (%s)", len(id), id)
	}
	if strings.Contains(id, "-") {
		t.Errorf("id must not contain dashes: %s", id)
	}
	if NewID() == id {
		t.Error("ids must be unique")
	}
}

func TestViewOmitsEmptyResult(t *testing.T) {
	rec := NewScripted(validScripted(), time.Now().UTC())
	v := rec.View()
	if v.JobID != rec.ID {
		t.Errorf("job_id = %s, want %s", v.JobID, rec.ID)
	}
	if v.Status != StatusQueued {
		t.Errorf("status = %s", v.Status)
	}
	if v.DownloadURL != "" || v.Message != "" {
		t.Error("fresh record must not expose a download url or message")
	}
}

func TestArtifactPaths(t *testing.T) {
	if got := ClientDownloadURL("abc"); got != "/videos/abc.mp4" {
		t.Errorf("ClientDownloadURL = %s", got)
	}
	if got := ArtifactObjectKey("abc"); got != "videos/abc.mp4" {
		t.Errorf("ArtifactObjectKey = %s", got)
	}
}
