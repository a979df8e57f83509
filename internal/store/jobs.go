package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/errors"
)

// JobKeyPrefix namespaces job record keys.
const JobKeyPrefix = "video_job:"

// JobStore persists job records and applies lifecycle transitions.
type JobStore struct {
	records *RecordStore
}

func NewJobStore(rdb *redis.Client) *JobStore {
	return &JobStore{records: NewRecordStore(rdb)}
}

func jobKey(id string) string { return JobKeyPrefix + id }

// Create writes a fresh record with the full retention window.
func (s *JobStore) Create(ctx context.Context, rec *job.Record) error {
	fields, err := rec.Fields()
	if err != nil {
		return err
	}
	if err := s.records.Put(ctx, jobKey(rec.ID), fields, RetentionWindow); err != nil {
		return errors.Wrap(err, "store.job_create", "write job record")
	}
	return nil
}

// Get loads a record by id. Missing or expired records yield NotFound; a
// hash that exists but no longer decodes yields CORRUPT_DATA so callers can
// tell a damaged record apart from a transport failure.
func (s *JobStore) Get(ctx context.Context, id string) (*job.Record, error) {
	fields, err := s.records.Get(ctx, jobKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "store.job_get", "read job record")
	}
	if len(fields) == 0 {
		return nil, errors.NotFound("job", id)
	}
	rec, err := job.RecordFromFields(fields)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeCorruptData, "store.job_get", "decode job record")
	}
	return rec, nil
}

// Transition applies a state change to the loaded record, refusing moves
// the state machine does not permit, and mirrors the change onto rec.
// result is only persisted when the transition carries one (DONE). A record
// that expired since it was loaded yields NotFound and stays gone.
func (s *JobStore) Transition(ctx context.Context, rec *job.Record, to job.Status, result *job.Result, message string) error {
	if !job.ValidTransition(rec.Status, to) {
		return errors.Newf(errors.CodeConflict, "job %s cannot move from %s to %s", rec.ID, rec.Status, to)
	}

	now := time.Now().UTC()
	fields := job.TransitionFields(to, result, message, now)
	if err := s.records.MergeFields(ctx, jobKey(rec.ID), fields); err != nil {
		return errors.Wrap(err, "store.job_transition", "write job transition")
	}

	rec.Status = to
	rec.UpdatedAt = now
	if result != nil {
		rec.DownloadURL = result.DownloadURL
		rec.ArtifactKey = result.ArtifactKey
	}
	if message != "" {
		rec.Message = message
	}
	return nil
}

// ForceFail writes a terminal FAILED status straight onto the stored hash,
// bypassing the typed state machine. It is the escape hatch for records
// that exist but no longer decode. A record already gone is not an error.
func (s *JobStore) ForceFail(ctx context.Context, id string, message string) error {
	fields := job.TransitionFields(job.StatusFailed, nil, message, time.Now().UTC())
	if err := s.records.MergeFields(ctx, jobKey(id), fields); err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "store.job_force_fail", "write failure status")
	}
	return nil
}
