// Package queue is the sync queue: a durable, ordered holding area for
// mutations that were applied locally but not yet confirmed by the remote
// service.
//
// Entries are stored in the sync_queue table so they survive restarts.
// Sequence numbers strictly increase with enqueue order and are never reused.
// The queue does not deduplicate: the same logical change may be queued more
// than once, and the remote side detects duplicates by idempotency key.
package queue

import (
	"context"
	"log/slog"

	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// Queue wraps the store's sync_queue table.
//
// Thread-safety: safe for concurrent use; SQLite serializes writers.
type Queue struct {
	store   *store.Store
	clock   model.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the clock used for enqueue timestamps.
func WithClock(c model.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithMetrics reports queue depth after every change.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// New creates a queue over s.
func New(s *store.Store, opts ...Option) *Queue {
	q := &Queue{
		store:  s,
		clock:  model.SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends m and returns its sequence number. The idempotency key,
// collection, operation and payload are stored unchanged.
func (q *Queue) Enqueue(ctx context.Context, m model.Mutation) (int64, error) {
	seq, err := store.EnqueueMutation(ctx, q.store, m, q.clock.Now())
	if err != nil {
		return 0, err
	}
	q.logger.Debug("mutation queued",
		"seq", seq,
		"collection", m.Collection,
		"operation", m.Operation,
		"idempotency_key", m.IdempotencyKey)
	q.refreshDepth(ctx)
	return seq, nil
}

// ListPending returns every queued mutation, oldest first.
func (q *Queue) ListPending(ctx context.Context) ([]model.QueuedMutation, error) {
	return store.PendingMutations(ctx, q.store, 0)
}

// Remove deletes a confirmed entry. Returns NOT_FOUND if seq is not queued.
func (q *Queue) Remove(ctx context.Context, seq int64) error {
	if err := store.RemoveMutation(ctx, q.store, seq); err != nil {
		return err
	}
	q.refreshDepth(ctx)
	return nil
}

// RecordFailure notes a failed delivery attempt on seq. The entry stays
// queued in its original position.
func (q *Queue) RecordFailure(ctx context.Context, seq int64, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return store.RecordAttempt(ctx, q.store, seq, msg)
}

// Len returns the number of queued mutations.
func (q *Queue) Len(ctx context.Context) (int, error) {
	return store.PendingCount(ctx, q.store)
}

func (q *Queue) refreshDepth(ctx context.Context) {
	if q.metrics == nil {
		return
	}
	n, err := q.Len(ctx)
	if err != nil {
		q.logger.Warn("sync queue depth unavailable", "error", err)
		return
	}
	q.metrics.SetQueueDepth(n)
}
