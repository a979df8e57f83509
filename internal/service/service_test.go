package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/ports"
	"yaomexi/internal/store"
)

type fakeJobs struct {
	records   map[string]*job.Record
	createErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{records: make(map[string]*job.Record)}
}

func (f *fakeJobs) Create(_ context.Context, rec *job.Record) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeJobs) Get(_ context.Context, id string) (*job.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.NotFound("job", id)
	}
	cp := *rec
	return &cp, nil
}

type fakeUploads struct {
	entries map[string]*store.UploadEntry
}

func newFakeUploads() *fakeUploads {
	return &fakeUploads{entries: make(map[string]*store.UploadEntry)}
}

func (f *fakeUploads) Put(_ context.Context, e *store.UploadEntry) error {
	f.entries[e.ID] = e
	return nil
}

func (f *fakeUploads) Get(_ context.Context, id string) (*store.UploadEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, errors.NotFound("upload", id)
	}
	return e, nil
}

type fakeQueue struct {
	ids        []string
	enqueueErr error
}

func (f *fakeQueue) Enqueue(_ context.Context, jobID string) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.ids = append(f.ids, jobID)
	return nil
}

type fakeCatalog struct {
	known map[string]bool
	err   error
}

func (f *fakeCatalog) Exists(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[id], nil
}

type fakeStorage struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Provider() string { return "fake" }

func (f *fakeStorage) PutObject(_ context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if f.putErr != nil {
		return ports.PutObjectOutput{}, f.putErr
	}
	b, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	f.objects[in.ObjectKey] = b
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: int64(len(b))}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, key string) (io.ReadCloser, string, int64, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, "", 0, fmt.Errorf("object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(b)), "video/mp4", int64(len(b)), nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type harness struct {
	svc     *Service
	jobs    *fakeJobs
	uploads *fakeUploads
	queue   *fakeQueue
	catalog *fakeCatalog
	sp      *fakeStorage
}

func newHarness() *harness {
	h := &harness{
		jobs:    newFakeJobs(),
		uploads: newFakeUploads(),
		queue:   &fakeQueue{},
		catalog: &fakeCatalog{known: map[string]bool{"news_flash": true}},
		sp:      newFakeStorage(),
	}
	h.svc = New(Deps{
		Jobs:      h.jobs,
		Uploads:   h.uploads,
		Queue:     h.queue,
		Templates: h.catalog,
		Storage:   h.sp,
	})
	return h
}

func validScripted() job.ScriptedPayload {
	return job.ScriptedPayload{
		Template: "news_flash",
		Script:   strings.Repeat("breaking news about the harbor bridge repair works. ", 2),
		Voice:    "es_female_warm",
	}
}

func TestSubmitScripted(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	view, err := h.svc.SubmitScripted(ctx, validScripted())
	if err != nil {
		t.Fatalf("SubmitScripted: %v", err)
	}

	if view.Status != job.StatusQueued {
		t.Errorf("status = %s, want %s", view.Status, job.StatusQueued)
	}
	if view.JobID == "" {
		t.Fatal("expected a job id")
	}
	if view.DownloadURL != "" {
		t.Error("fresh job must not carry a download url")
	}

	if _, ok := h.jobs.records[view.JobID]; !ok {
		t.Error("record not persisted")
	}
	if len(h.queue.ids) != 1 || h.queue.ids[0] != view.JobID {
		t.Errorf("queue = %v, want [%s]", h.queue.ids, view.JobID)
	}
}

func TestSubmitScriptedRejectsInvalid(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	p := validScripted()
	p.Script = strings.Repeat("a", 40)

	_, err := h.svc.SubmitScripted(ctx, p)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Rejected submissions leave no trace.
	if len(h.jobs.records) != 0 {
		t.Error("record written for rejected submission")
	}
	if len(h.queue.ids) != 0 {
		t.Error("id enqueued for rejected submission")
	}
}

func TestSubmitScriptedUnknownTemplate(t *testing.T) {
	h := newHarness()

	p := validScripted()
	p.Template = "no_such_template"

	_, err := h.svc.SubmitScripted(context.Background(), p)
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(h.jobs.records) != 0 || len(h.queue.ids) != 0 {
		t.Error("rejected submission left a trace")
	}
}

func TestSubmitScriptedWithoutCatalog(t *testing.T) {
	h := newHarness()
	h.svc = New(Deps{
		Jobs:    h.jobs,
		Uploads: h.uploads,
		Queue:   h.queue,
		Storage: h.sp,
	})

	p := validScripted()
	p.Template = "anything_goes"

	if _, err := h.svc.SubmitScripted(context.Background(), p); err != nil {
		t.Fatalf("expected nil catalog to skip the check, got %v", err)
	}
}

func TestSubmitScriptedEnqueueFailure(t *testing.T) {
	h := newHarness()
	h.queue.enqueueErr = fmt.Errorf("redis gone")

	_, err := h.svc.SubmitScripted(context.Background(), validScripted())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.GetCode(err) != errors.CodeUnavailable {
		t.Errorf("expected %s, got %s", errors.CodeUnavailable, errors.GetCode(err))
	}
}

func TestSubmitTimeline(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	h.uploads.entries["u1"] = &store.UploadEntry{ID: "u1", ObjectKey: "uploads/u1.mp4", SizeBytes: 10}
	h.uploads.entries["u2"] = &store.UploadEntry{ID: "u2", ObjectKey: "uploads/u2.mp4", SizeBytes: 20}

	view, err := h.svc.SubmitTimeline(ctx, job.TimelinePayload{Clips: []job.Clip{
		{UploadID: "u1", Duration: 2},
		{UploadID: "u2", Duration: 3},
	}})
	if err != nil {
		t.Fatalf("SubmitTimeline: %v", err)
	}
	if view.Status != job.StatusQueued {
		t.Errorf("status = %s", view.Status)
	}
	if len(h.queue.ids) != 1 {
		t.Errorf("queue = %v", h.queue.ids)
	}
}

func TestSubmitTimelineUnknownUpload(t *testing.T) {
	h := newHarness()
	h.uploads.entries["u1"] = &store.UploadEntry{ID: "u1", ObjectKey: "uploads/u1.mp4", SizeBytes: 10}

	_, err := h.svc.SubmitTimeline(context.Background(), job.TimelinePayload{Clips: []job.Clip{
		{UploadID: "u1", Duration: 2},
		{UploadID: "ghost", Duration: 3},
	}})
	if !errors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the missing upload: %v", err)
	}
	if len(h.jobs.records) != 0 || len(h.queue.ids) != 0 {
		t.Error("rejected submission left a trace")
	}
}

func TestGetStatusIsPureRead(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	view, err := h.svc.SubmitScripted(ctx, validScripted())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := h.svc.GetStatus(ctx, view.JobID)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if got.Status != job.StatusQueued {
			t.Errorf("status = %s", got.Status)
		}
	}
	if len(h.queue.ids) != 1 {
		t.Errorf("polling must not touch the queue: %v", h.queue.ids)
	}
}

func TestGetStatusMissing(t *testing.T) {
	h := newHarness()
	_, err := h.svc.GetStatus(context.Background(), "missing")
	if !errors.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestUploadClip(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	data := []byte("fake mp4 bytes")
	view, err := h.svc.UploadClip(ctx, bytes.NewReader(data), int64(len(data)), "video/mp4", "clip.mov")
	if err != nil {
		t.Fatalf("UploadClip: %v", err)
	}

	if view.UploadID == "" {
		t.Fatal("expected an upload id")
	}
	if view.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", view.Size, len(data))
	}

	entry, err := h.uploads.Get(ctx, view.UploadID)
	if err != nil {
		t.Fatalf("entry not registered: %v", err)
	}
	if !strings.HasSuffix(entry.ObjectKey, ".mov") {
		t.Errorf("object key should keep the extension: %s", entry.ObjectKey)
	}
	if got := h.sp.objects[entry.ObjectKey]; !bytes.Equal(got, data) {
		t.Error("stored bytes differ")
	}
}

func TestUploadClipRejections(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	t.Run("empty file", func(t *testing.T) {
		_, err := h.svc.UploadClip(ctx, bytes.NewReader(nil), 0, "video/mp4", "clip.mp4")
		if !errors.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("non-video content type", func(t *testing.T) {
		_, err := h.svc.UploadClip(ctx, strings.NewReader("x"), 1, "image/png", "clip.png")
		if !errors.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	if len(h.uploads.entries) != 0 || len(h.sp.objects) != 0 {
		t.Error("rejected uploads left a trace")
	}
}

func TestArtifact(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	rec := job.NewScripted(validScripted(), time.Now().UTC())
	rec.Status = job.StatusDone
	rec.ArtifactKey = job.ArtifactObjectKey(rec.ID)
	rec.DownloadURL = job.ClientDownloadURL(rec.ID)
	h.jobs.records[rec.ID] = rec
	h.sp.objects[rec.ArtifactKey] = []byte("rendered video")

	rc, contentType, size, err := h.svc.Artifact(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	defer rc.Close()

	if contentType != "video/mp4" {
		t.Errorf("content type = %s", contentType)
	}
	if size != int64(len("rendered video")) {
		t.Errorf("size = %d", size)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "rendered video" {
		t.Errorf("body = %q", b)
	}
}

func TestArtifactNotReady(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for _, status := range []job.Status{job.StatusQueued, job.StatusProcessing, job.StatusFailed} {
		rec := job.NewScripted(validScripted(), time.Now().UTC())
		rec.Status = status
		h.jobs.records[rec.ID] = rec

		_, _, _, err := h.svc.Artifact(ctx, rec.ID)
		if !errors.IsConflict(err) {
			t.Errorf("%s: expected conflict, got %v", status, err)
		}
	}
}

func TestArtifactGoneObject(t *testing.T) {
	h := newHarness()

	rec := job.NewScripted(validScripted(), time.Now().UTC())
	rec.Status = job.StatusDone
	rec.ArtifactKey = job.ArtifactObjectKey(rec.ID)
	h.jobs.records[rec.ID] = rec

	_, _, _, err := h.svc.Artifact(context.Background(), rec.ID)
	if !errors.IsNotFound(err) {
		t.Errorf("expected NotFound for vanished object, got %v", err)
	}
}
