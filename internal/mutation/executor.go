// Package mutation applies local writes and confirms them with the remote
// service, falling back to the sync queue when confirmation is not possible.
//
// The contract is durable-then-eventually-consistent:
//
//  1. The local write runs first. If it fails, the operation fails and
//     nothing is queued.
//  2. When online, each resulting mutation is delivered with a bounded
//     timeout. A confirmed delivery needs no further action.
//  3. When offline, or when delivery fails or times out, the mutation is
//     enqueued and the operation still succeeds.
//
// Remote failures never reach the caller. A failure to enqueue after a
// successful local write is logged and counted but not returned either: the
// data is already durable and only the sync signal is lost.
package mutation

import (
	"context"
	"log/slog"
	"time"

	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/remote"
)

// DefaultTimeout bounds one delivery attempt.
const DefaultTimeout = 5 * time.Second

// Enqueuer receives mutations that could not be confirmed.
type Enqueuer interface {
	Enqueue(ctx context.Context, m model.Mutation) (int64, error)
}

// Connectivity reports whether the remote is believed reachable.
type Connectivity interface {
	Online() bool
}

// Outcome describes what happened to one mutation after its local write.
type Outcome struct {
	Mutation model.Mutation `json:"mutation"`

	// Delivered is true when the remote confirmed the mutation.
	Delivered bool `json:"delivered"`

	// Queued is true when the mutation went to the sync queue; Seq is its
	// queue position.
	Queued bool  `json:"queued"`
	Seq    int64 `json:"seq,omitempty"`
}

// Executor runs mutations through the local-write/deliver/enqueue sequence.
//
// Thread-safety: safe for concurrent use. Callers that read-modify-write the
// same record should hold its Locker keys across Execute.
type Executor struct {
	queue     Enqueuer
	deliverer remote.Deliverer
	conn      Connectivity
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics counts outcomes and delivery latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithClock sets the time source used to measure delivery latency.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.clock = now }
}

// NewExecutor creates an executor. A nil deliverer means no remote is
// configured and every mutation is queued.
func NewExecutor(q Enqueuer, d remote.Deliverer, conn Connectivity, opts ...Option) *Executor {
	e := &Executor{
		queue:     q,
		deliverer: d,
		conn:      conn,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs write and then confirms or queues m.
func (e *Executor) Execute(ctx context.Context, m model.Mutation, write func(ctx context.Context) error) (Outcome, error) {
	outcomes, err := e.ExecuteAll(ctx, func(ctx context.Context) ([]model.Mutation, error) {
		if err := write(ctx); err != nil {
			return nil, err
		}
		return []model.Mutation{m}, nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return outcomes[0], nil
}

// ExecuteAll runs write, which performs a composite local change and returns
// the mutations describing it, then confirms or queues each in order.
//
// Once one delivery in the batch fails, the remaining mutations are queued
// without a delivery attempt, so the remote sees this batch in order. Order
// across calls is not kept: a later direct delivery can reach the remote
// before an older queued mutation that the reconciler replays afterwards.
func (e *Executor) ExecuteAll(ctx context.Context, write func(ctx context.Context) ([]model.Mutation, error)) ([]Outcome, error) {
	mutations, err := write(ctx)
	if err != nil {
		return nil, err
	}

	// The local write is committed; finish the sync handoff even if the
	// caller gives up now.
	ctx = context.WithoutCancel(ctx)

	outcomes := make([]Outcome, 0, len(mutations))
	deliver := e.deliverer != nil && e.conn != nil && e.conn.Online()
	for _, m := range mutations {
		out := Outcome{Mutation: m}

		if deliver {
			if err := e.deliver(ctx, m); err != nil {
				e.logger.Warn("remote delivery failed, queuing",
					"collection", m.Collection,
					"operation", m.Operation,
					"idempotency_key", m.IdempotencyKey,
					"error", err)
				deliver = false
			} else {
				out.Delivered = true
				e.metrics.MutationExecuted(string(m.Collection), string(m.Operation), metrics.OutcomeDelivered)
				outcomes = append(outcomes, out)
				continue
			}
		}

		seq, err := e.queue.Enqueue(ctx, m)
		if err != nil {
			e.logger.Error("enqueue failed after local write",
				"collection", m.Collection,
				"operation", m.Operation,
				"idempotency_key", m.IdempotencyKey,
				"error", err)
			e.metrics.MutationExecuted(string(m.Collection), string(m.Operation), metrics.OutcomeLost)
			outcomes = append(outcomes, out)
			continue
		}
		out.Queued = true
		out.Seq = seq
		e.metrics.MutationExecuted(string(m.Collection), string(m.Operation), metrics.OutcomeQueued)
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

func (e *Executor) deliver(ctx context.Context, m model.Mutation) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := e.clock()
	err := e.deliverer.Deliver(ctx, m)
	e.metrics.ObserveDelivery(e.clock().Sub(start))
	return err
}
