// Package queue decouples request handling from dispatch work. Producers
// enqueue jobs and return immediately; a pool of worker goroutines drains
// the queue and routes each job to the single handler registered for its
// kind. The same call sites would survive a move to an external broker:
// only Enqueue and the worker loop would change.
//
// There is no retry or dead-letter path. A job that fails is logged and
// dropped, and in-flight jobs are lost if the process dies. A production
// deployment would close those gaps with a durable broker and idempotency
// keys.
package queue

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chrisdamba/foodispatch/internal/models"
)

// Handler consumes one job payload. Each job kind has exactly one handler.
type Handler func(ctx context.Context, job models.Job) error

type Queue struct {
	jobs     chan models.Job
	handlers map[models.JobKind]Handler
	wg       sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	producers sync.WaitGroup
}

func New(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		jobs:     make(chan models.Job, size),
		handlers: make(map[models.JobKind]Handler),
	}
}

// Register binds a handler to a job kind. Must happen before Start.
func (q *Queue) Register(kind models.JobKind, h Handler) {
	q.handlers[kind] = h
}

// Enqueue accepts a job for background processing and returns immediately.
// It blocks only if the buffer is full, never on handler work. The producer
// registration below keeps the send and a concurrent Close ordered: Close
// waits for every in-flight send before closing the channel, so Enqueue
// either lands the job or reports the closed queue, never panics.
func (q *Queue) Enqueue(job models.Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("queue: enqueue %s: queue is closed", job.Kind)
	}
	q.producers.Add(1)
	q.mu.Unlock()
	defer q.producers.Done()

	q.jobs <- job
	return nil
}

// Start launches the worker pool. Workers exit when ctx is cancelled or the
// queue is closed and drained.
func (q *Queue) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func(id int) {
			defer q.wg.Done()
			q.worker(ctx, id)
		}(i)
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, job models.Job) {
	handler, ok := q.handlers[job.Kind]
	if !ok {
		log.Printf("[queue] no handler registered for job kind %q, dropping", job.Kind)
		return
	}
	if err := handler(ctx, job); err != nil {
		// Log only: failed jobs are not retried or dead-lettered.
		log.Printf("[queue] %s job failed: %v", job.Kind, err)
	}
}

// Close stops accepting jobs and waits for the workers to drain what is
// already queued. In-flight Enqueue calls are allowed to finish before the
// channel is closed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.producers.Wait()
	close(q.jobs)
	q.wg.Wait()
}
