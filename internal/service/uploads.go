package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
	"yaomexi/internal/pkg/metrics"
	"yaomexi/internal/ports"
	"yaomexi/internal/store"
)

// UploadView is what the upload endpoint returns.
type UploadView struct {
	UploadID string `json:"upload_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// UploadClip stores a raw clip and registers it for later timeline
// reference. Empty payloads and non-video content types are rejected
// before anything is written.
func (s *Service) UploadClip(ctx context.Context, r io.Reader, size int64, contentType, originalName string) (UploadView, error) {
	if size <= 0 {
		return UploadView{}, errors.ValidationField("file", "uploaded clip is empty")
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "video/") {
		return UploadView{}, errors.ValidationField("file", "unsupported content type: "+contentType)
	}

	uploadID := job.NewID()
	objectKey := "uploads/" + uploadID + clipExt(originalName)

	out, err := s.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   objectKey,
		ContentType: ct,
		Reader:      r,
		Size:        size,
	})
	if err != nil {
		return UploadView{}, errors.Wrap(err, "service.upload", "store clip bytes")
	}

	entry := &store.UploadEntry{
		ID:           uploadID,
		OriginalName: originalName,
		ObjectKey:    out.ObjectKey,
		SizeBytes:    out.Size,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.uploads.Put(ctx, entry); err != nil {
		return UploadView{}, err
	}

	metrics.IncUpload(out.Size)
	s.log.FromContext(ctx).Info("clip uploaded",
		"upload_id", uploadID,
		"size_bytes", out.Size,
	)

	return UploadView{
		UploadID: uploadID,
		Filename: originalName,
		Size:     out.Size,
	}, nil
}

// clipExt picks a file extension for the stored clip. Timeline rendering
// concatenates whatever containers arrive, so this only has to be stable,
// not exact.
func clipExt(originalName string) string {
	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		return ext
	}
	return ".mp4"
}
