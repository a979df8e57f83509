package worker

import (
	"context"
	"time"

	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/pkg/metrics"
)

// Run consumes the queue until ctx is cancelled. Each blocking dequeue is
// bounded so cancellation is noticed within one DequeueTimeout.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info("worker started",
		"queue_timeout", w.dequeueWait.String(),
		"storage_provider", w.sp.Provider(),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return
		default:
		}

		jobID, err := w.queue.DequeueBlocking(ctx, w.dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopped")
				return
			}
			w.log.Error("dequeue failed", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}
		if jobID == "" {
			continue
		}

		w.handle(ctx, jobID)
	}
}

// handle processes one claimed id with a panic guard so a single bad job
// cannot take the loop down.
func (w *Worker) handle(ctx context.Context, jobID string) {
	ctx = logger.ContextWithJobID(ctx, jobID)
	log := w.log.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing job", "panic", r)
			metrics.IncJobProcessed("FAILED")
		}
	}()

	start := time.Now()
	if err := w.ProcessJob(ctx, jobID); err != nil {
		log.Error("job processing failed", "error", err.Error())
	}
	metrics.ObserveJobDuration(time.Since(start))
}
