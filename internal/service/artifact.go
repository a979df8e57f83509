package service

import (
	"context"
	"io"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
)

// Artifact opens the rendered video of a DONE job for streaming.
// A job that exists but has not finished yields Conflict; a DONE job whose
// object has gone missing yields NotFound rather than a server error.
func (s *Service) Artifact(ctx context.Context, jobID string) (io.ReadCloser, string, int64, error) {
	rec, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, "", 0, err
	}

	if rec.Status != job.StatusDone {
		return nil, "", 0, errors.Conflict("job not completed").WithField("status", string(rec.Status))
	}

	key := rec.ArtifactKey
	if key == "" {
		key = job.ArtifactObjectKey(rec.ID)
	}

	rc, contentType, size, err := s.sp.GetObject(ctx, key)
	if err != nil {
		return nil, "", 0, errors.WrapWithCode(err, errors.CodeNotFound, "service.artifact", "video not available")
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "video/mp4"
	}
	return rc, contentType, size, nil
}
