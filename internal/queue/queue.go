// Package queue is the FIFO work queue between the submission API and the
// worker: a Redis list of job ids, head push / blocking tail pop.
package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultName is the queue key used when none is configured.
const DefaultName = "yaomexi:videos"

// Queue is a FIFO queue of job ids. Removal is at-most-once: once
// DequeueBlocking returns an id it is gone from the queue, with no
// acknowledgment or requeue. A worker crash between dequeue and the
// terminal status write leaves that job PROCESSING until its record
// expires; recovery is a process restart, which does not requeue.
type Queue struct {
	rdb  *redis.Client
	name string
}

func New(rdb *redis.Client, name string) *Queue {
	if name == "" {
		name = DefaultName
	}
	return &Queue{rdb: rdb, name: name}
}

// Enqueue adds a job id to the back of the queue.
func (q *Queue) Enqueue(ctx context.Context, jobID string) error {
	return q.rdb.LPush(ctx, q.name, jobID).Err()
}

// DequeueBlocking removes and returns the head of the queue, blocking up
// to timeout when the queue is empty. On timeout expiry it returns ("",
// nil) so the caller can loop for liveness checks instead of blocking
// forever.
func (q *Queue) DequeueBlocking(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

// Len reports how many job ids are waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
