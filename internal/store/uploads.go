package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"yaomexi/internal/pkg/errors"
)

// UploadKeyPrefix namespaces upload entry keys.
const UploadKeyPrefix = "upload:"

// UploadEntry describes one received raw clip awaiting reference by a
// timeline job. Entries expire with the retention window; a job submitted
// against an expired entry is rejected at submission time.
type UploadEntry struct {
	ID           string
	OriginalName string
	ObjectKey    string
	SizeBytes    int64
	CreatedAt    time.Time
}

// UploadRegistry persists upload entries.
type UploadRegistry struct {
	records *RecordStore
}

func NewUploadRegistry(rdb *redis.Client) *UploadRegistry {
	return &UploadRegistry{records: NewRecordStore(rdb)}
}

func uploadKey(id string) string { return UploadKeyPrefix + id }

// Put writes a fresh entry with the full retention window.
func (r *UploadRegistry) Put(ctx context.Context, e *UploadEntry) error {
	if e.SizeBytes <= 0 {
		return errors.Validation("upload entry must have a positive size")
	}
	fields := map[string]string{
		"upload_id":     e.ID,
		"original_name": e.OriginalName,
		"object_key":    e.ObjectKey,
		"size_bytes":    strconv.FormatInt(e.SizeBytes, 10),
		"created_at":    e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := r.records.Put(ctx, uploadKey(e.ID), fields, RetentionWindow); err != nil {
		return errors.Wrap(err, "store.upload_put", "write upload entry")
	}
	return nil
}

// Get resolves an upload id. Missing or expired entries yield NotFound.
func (r *UploadRegistry) Get(ctx context.Context, id string) (*UploadEntry, error) {
	fields, err := r.records.Get(ctx, uploadKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "store.upload_get", "read upload entry")
	}
	if len(fields) == 0 {
		return nil, errors.NotFound("upload", id)
	}

	e := &UploadEntry{
		ID:           fields["upload_id"],
		OriginalName: fields["original_name"],
		ObjectKey:    fields["object_key"],
	}
	e.SizeBytes, _ = strconv.ParseInt(fields["size_bytes"], 10, 64)
	if ts := fields["created_at"]; ts != "" {
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return e, nil
}
