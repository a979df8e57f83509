// Package service implements the submission side of the pipeline: it
// validates creation requests, persists the initial record, enqueues the
// job id, answers status queries, and registers clip uploads. It never
// mutates a job after creation; that is the worker's side of the
// single-writer contract.
package service

import (
	"context"

	"yaomexi/internal/job"
	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/ports"
	"yaomexi/internal/store"
)

// Jobs is the slice of the job store the service needs.
type Jobs interface {
	Create(ctx context.Context, rec *job.Record) error
	Get(ctx context.Context, id string) (*job.Record, error)
}

// Uploads is the slice of the upload registry the service needs.
type Uploads interface {
	Put(ctx context.Context, e *store.UploadEntry) error
	Get(ctx context.Context, id string) (*store.UploadEntry, error)
}

// WorkQueue is the producer side of the work queue.
type WorkQueue interface {
	Enqueue(ctx context.Context, jobID string) error
}

// TemplateCatalog validates scripted template ids. Optional: when nil,
// template ids are only length-checked.
type TemplateCatalog interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Deps wires the service's collaborators.
type Deps struct {
	Jobs      Jobs
	Uploads   Uploads
	Queue     WorkQueue
	Templates TemplateCatalog
	Storage   ports.StorageProvider
	Log       *logger.Logger
}

// Service is the submission service.
type Service struct {
	jobs      Jobs
	uploads   Uploads
	queue     WorkQueue
	templates TemplateCatalog
	sp        ports.StorageProvider
	log       *logger.Logger
}

func New(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Service{
		jobs:      d.Jobs,
		uploads:   d.Uploads,
		queue:     d.Queue,
		templates: d.Templates,
		sp:        d.Storage,
		log:       log.WithComponent("service"),
	}
}
