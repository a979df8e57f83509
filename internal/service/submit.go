package service

import (
	"context"
	"time"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/metrics"
)

// SubmitScripted validates a scripted request, persists the QUEUED record
// and enqueues it. Validation failures leave no trace in store or queue.
func (s *Service) SubmitScripted(ctx context.Context, p job.ScriptedPayload) (job.StatusView, error) {
	if err := p.Validate(); err != nil {
		return job.StatusView{}, err
	}

	if s.templates != nil {
		ok, err := s.templates.Exists(ctx, p.Template)
		if err != nil {
			return job.StatusView{}, errors.Wrap(err, "service.submit", "check template catalog")
		}
		if !ok {
			return job.StatusView{}, errors.ValidationField("template", "unknown template: "+p.Template)
		}
	}

	rec := job.NewScripted(p, time.Now().UTC())
	return s.persistAndEnqueue(ctx, rec)
}

// SubmitTimeline validates a timeline request, resolving every referenced
// upload before anything is written: one unknown or expired upload rejects
// the whole submission atomically.
func (s *Service) SubmitTimeline(ctx context.Context, p job.TimelinePayload) (job.StatusView, error) {
	if err := p.Validate(); err != nil {
		return job.StatusView{}, err
	}

	for _, c := range p.Clips {
		if _, err := s.uploads.Get(ctx, c.UploadID); err != nil {
			if errors.IsNotFound(err) {
				return job.StatusView{}, errors.ValidationField("clips", "clip not found: "+c.UploadID)
			}
			return job.StatusView{}, errors.Wrap(err, "service.submit", "resolve clip upload")
		}
	}

	rec := job.NewTimeline(p, time.Now().UTC())
	return s.persistAndEnqueue(ctx, rec)
}

// persistAndEnqueue writes the record, then enqueues. Order matters: an
// enqueue never happens for a record that failed to write, so the queue
// cannot hold ids that point at nothing.
func (s *Service) persistAndEnqueue(ctx context.Context, rec *job.Record) (job.StatusView, error) {
	if err := s.jobs.Create(ctx, rec); err != nil {
		return job.StatusView{}, err
	}

	if err := s.queue.Enqueue(ctx, rec.ID); err != nil {
		// The unqueued record ages out with its TTL; nothing to clean up.
		return job.StatusView{}, errors.WrapWithCode(err, errors.CodeUnavailable, "service.submit", "enqueue job")
	}

	metrics.IncJobSubmitted(string(rec.Kind))
	s.log.FromContext(ctx).Info("job submitted",
		"job_id", rec.ID,
		"job_kind", string(rec.Kind),
	)

	return rec.View(), nil
}

// GetStatus is a pure read: it never touches the queue and never mutates
// the record.
func (s *Service) GetStatus(ctx context.Context, jobID string) (job.StatusView, error) {
	rec, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return job.StatusView{}, err
	}
	return rec.View(), nil
}
