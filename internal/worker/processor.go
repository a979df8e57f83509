package worker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/metrics"
	"yaomexi/internal/ports"
	"yaomexi/internal/worker/renderer"
)

// maxFailureMessage caps what gets persisted onto a FAILED record so a
// runaway renderer error cannot bloat the hash.
const maxFailureMessage = 2000

// ProcessJob drives one job to a terminal state. A missing record (the id
// outlived its hash) is logged and skipped, not treated as a failure, and a
// record that exists but no longer decodes is marked FAILED directly. Any
// render or publish error lands the job in FAILED with a message; the
// returned error is reserved for store-level problems the caller should
// surface.
func (w *Worker) ProcessJob(ctx context.Context, jobID string) error {
	log := w.log.FromContext(ctx)

	rec, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		switch {
		case errors.IsNotFound(err):
			log.Warn("job record missing, skipping", "job_id", jobID)
			metrics.IncJobProcessed("SKIPPED")
			return nil
		case errors.IsCode(err, errors.CodeCorruptData):
			return w.failCorrupt(ctx, jobID, err)
		default:
			return err
		}
	}

	if err := w.jobs.Transition(ctx, rec, job.StatusProcessing, nil, ""); err != nil {
		if errors.IsNotFound(err) {
			log.Warn("job record expired before processing, skipping", "job_id", jobID)
			metrics.IncJobProcessed("SKIPPED")
			return nil
		}
		return err
	}
	log.Info("job processing", "job_kind", string(rec.Kind))

	scratchDir := filepath.Join(w.scratchRoot, "renders", rec.ID)
	outputPath := filepath.Join(scratchDir, "video.mp4")
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return w.failJob(ctx, rec, scratchDir, "prepare scratch dir: "+err.Error())
	}

	var renderErr error
	switch rec.Kind {
	case job.KindTimeline:
		renderErr = w.renderTimeline(ctx, rec, scratchDir, outputPath)
	default:
		renderErr = w.renderScripted(ctx, rec, outputPath)
	}
	if renderErr != nil {
		return w.failJob(ctx, rec, scratchDir, renderErr.Error())
	}

	result, err := w.publish(ctx, rec.ID, outputPath)
	if err != nil {
		return w.failJob(ctx, rec, scratchDir, "publish artifact: "+err.Error())
	}

	if err := w.jobs.Transition(ctx, rec, job.StatusDone, result, "render complete"); err != nil {
		if errors.IsNotFound(err) {
			log.Warn("job record expired mid-render, discarding artifact", "job_id", rec.ID)
			if derr := w.sp.DeleteObject(ctx, result.ArtifactKey); derr != nil {
				log.Warn("artifact cleanup failed", "object_key", result.ArtifactKey, "error", derr.Error())
			}
			w.cleanupScratch(scratchDir)
			metrics.IncJobProcessed("SKIPPED")
			return nil
		}
		return err
	}
	w.cleanupScratch(scratchDir)

	metrics.IncJobProcessed(string(job.StatusDone))
	log.Info("job done", "download_url", result.DownloadURL)
	return nil
}

func (w *Worker) renderScripted(ctx context.Context, rec *job.Record, outputPath string) error {
	p := rec.Scripted
	if p == nil {
		return errors.Internal("scripted job has no payload")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return w.renderer.RenderScripted(ctx, renderer.ScriptedSpec{
		JobID:      rec.ID,
		Template:   p.Template,
		Script:     p.Script,
		Voice:      p.Voice,
		OutputPath: outputPath,
	})
}

func (w *Worker) renderTimeline(ctx context.Context, rec *job.Record, scratchDir, outputPath string) error {
	p := rec.Timeline
	if p == nil {
		return errors.Internal("timeline job has no payload")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	clips, err := w.materializeClips(ctx, p.Clips, scratchDir)
	if err != nil {
		return err
	}
	return w.renderer.RenderTimeline(ctx, renderer.TimelineSpec{
		JobID:      rec.ID,
		Mode:       renderer.ModeConcat,
		Clips:      clips,
		OutputPath: outputPath,
	})
}

// materializeClips pulls each referenced upload out of storage into local
// scratch files the renderer can read. Uploads are validated at submission,
// but entries and objects can expire between submission and processing, so
// a missing one fails the job with a message naming the upload.
func (w *Worker) materializeClips(ctx context.Context, clips []job.Clip, scratchDir string) ([]renderer.ClipFile, error) {
	inputsDir := filepath.Join(scratchDir, "inputs")
	if err := os.MkdirAll(inputsDir, 0o755); err != nil {
		return nil, err
	}

	out := make([]renderer.ClipFile, 0, len(clips))
	for i, c := range clips {
		entry, err := w.uploads.Get(ctx, c.UploadID)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, fmt.Errorf("clip upload expired: %s", c.UploadID)
			}
			return nil, err
		}

		ext := filepath.Ext(entry.ObjectKey)
		if ext == "" {
			ext = ".mp4"
		}
		path := filepath.Join(inputsDir, fmt.Sprintf("clip_%03d%s", i, ext))
		if err := w.fetchObject(ctx, entry.ObjectKey, path); err != nil {
			return nil, fmt.Errorf("fetch clip %s: %w", c.UploadID, err)
		}

		out = append(out, renderer.ClipFile{Path: path, Duration: c.Duration})
	}
	return out, nil
}

func (w *Worker) fetchObject(ctx context.Context, objectKey, path string) error {
	rc, _, _, err := w.sp.GetObject(ctx, objectKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// publish uploads the rendered file and returns where it ended up.
func (w *Worker) publish(ctx context.Context, jobID, outputPath string) (*job.Result, error) {
	f, err := os.Open(outputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("renderer produced an empty file")
	}

	out, err := w.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   job.ArtifactObjectKey(jobID),
		ContentType: "video/mp4",
		Reader:      f,
		Size:        fi.Size(),
	})
	if err != nil {
		return nil, err
	}

	return &job.Result{
		DownloadURL: job.ClientDownloadURL(jobID),
		ArtifactKey: out.ObjectKey,
	}, nil
}

// failJob records the terminal FAILED state after best-effort cleanup of
// any partial artifact. Cleanup failures are logged, never propagated: the
// status write must not be blocked by them.
func (w *Worker) failJob(ctx context.Context, rec *job.Record, scratchDir, message string) error {
	log := w.log.FromContext(ctx)

	if len(message) > maxFailureMessage {
		message = message[:maxFailureMessage]
	}

	key := rec.ArtifactKey
	if key == "" {
		key = job.ArtifactObjectKey(rec.ID)
	}
	if err := w.sp.DeleteObject(ctx, key); err != nil {
		log.Warn("artifact cleanup failed", "object_key", key, "error", err.Error())
	}
	w.cleanupScratch(scratchDir)

	if err := w.jobs.Transition(ctx, rec, job.StatusFailed, nil, message); err != nil {
		if errors.IsNotFound(err) {
			log.Warn("job record expired before failure could be recorded", "job_id", rec.ID)
			metrics.IncJobProcessed("SKIPPED")
			return nil
		}
		return err
	}

	metrics.IncJobProcessed(string(job.StatusFailed))
	log.Warn("job failed", "message", message)
	return nil
}

// failCorrupt lands a record that exists but cannot be decoded in FAILED.
// The typed transition needs a decoded record to run, so the status is
// merged onto the hash directly.
func (w *Worker) failCorrupt(ctx context.Context, jobID string, cause error) error {
	message := "corrupt job record: " + cause.Error()
	if len(message) > maxFailureMessage {
		message = message[:maxFailureMessage]
	}
	if err := w.jobs.ForceFail(ctx, jobID, message); err != nil {
		return err
	}

	metrics.IncJobProcessed(string(job.StatusFailed))
	w.log.FromContext(ctx).Warn("job record corrupt, marked failed", "job_id", jobID, "error", cause.Error())
	return nil
}

func (w *Worker) cleanupScratch(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		w.log.Warn("scratch cleanup failed", "dir", dir, "error", err.Error())
	}
}
