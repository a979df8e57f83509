// Package worker consumes the video job queue: it claims job ids, drives
// the renderer, publishes finished artifacts and records terminal states.
// The worker is the only writer of a job record after submission, so no
// compare-and-set is needed on transitions.
package worker

import (
	"time"

	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/ports"
	"yaomexi/internal/queue"
	"yaomexi/internal/store"
	"yaomexi/internal/worker/renderer"
)

// DefaultDequeueTimeout bounds each blocking dequeue so the loop can
// notice shutdown between waits.
const DefaultDequeueTimeout = 5 * time.Second

// Deps wires the worker's collaborators.
type Deps struct {
	Jobs     *store.JobStore
	Uploads  *store.UploadRegistry
	Queue    *queue.Queue
	Renderer renderer.Client
	Storage  ports.StorageProvider

	// ScratchRoot is the local directory for renderer output and
	// materialized timeline inputs. Cleaned per job.
	ScratchRoot string

	DequeueTimeout time.Duration
	Log            *logger.Logger
}

// Worker is the queue consumer.
type Worker struct {
	jobs        *store.JobStore
	uploads     *store.UploadRegistry
	queue       *queue.Queue
	renderer    renderer.Client
	sp          ports.StorageProvider
	scratchRoot string
	dequeueWait time.Duration
	log         *logger.Logger
}

func New(d Deps) *Worker {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	wait := d.DequeueTimeout
	if wait <= 0 {
		wait = DefaultDequeueTimeout
	}
	return &Worker{
		jobs:        d.Jobs,
		uploads:     d.Uploads,
		queue:       d.Queue,
		renderer:    d.Renderer,
		sp:          d.Storage,
		scratchRoot: d.ScratchRoot,
		dequeueWait: wait,
		log:         log.WithComponent("worker"),
	}
}
