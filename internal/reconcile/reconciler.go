// Package reconcile drains the sync queue against the remote service once
// connectivity returns.
//
// Delivery is at-least-once. Each queued mutation is attempted in enqueue
// order with its own timeout; confirmed entries are removed, failed ones stay
// queued with their attempt count bumped, and the drain moves on. A partially
// failed drain is not retried on its own: the next BecameOnline signal or a
// manual Drain picks up what is left.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iir20/amar-dokan-pos-system/internal/metrics"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/remote"
)

// DefaultItemTimeout bounds the delivery of one queued mutation.
const DefaultItemTimeout = 5 * time.Second

// DefaultSweepTimeout bounds one whole drain.
const DefaultSweepTimeout = 2 * time.Minute

// Queue is the part of the sync queue the reconciler needs.
type Queue interface {
	ListPending(ctx context.Context) ([]model.QueuedMutation, error)
	Remove(ctx context.Context, seq int64) error
	RecordFailure(ctx context.Context, seq int64, cause error) error
}

// Connectivity reports whether the remote is believed reachable.
type Connectivity interface {
	Online() bool
}

// Report summarizes one drain.
type Report struct {
	// Attempted counts deliveries tried.
	Attempted int `json:"attempted"`

	// Delivered counts entries confirmed and removed.
	Delivered int `json:"delivered"`

	// Failed counts entries left in the queue.
	Failed int `json:"failed"`

	// Skipped is true when the drain did not run because the device is
	// offline or no remote is configured.
	Skipped bool `json:"skipped"`
}

// Reconciler replays queued mutations.
//
// Thread-safety: safe for concurrent use. Concurrent Drain calls share one
// sweep.
type Reconciler struct {
	queue       Queue
	deliverer   remote.Deliverer
	conn        Connectivity
	itemTimeout  time.Duration
	sweepTimeout time.Duration
	clock        func() time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics
	group        singleflight.Group
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithItemTimeout bounds each delivery.
func WithItemTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.itemTimeout = d }
}

// WithSweepTimeout bounds each drain as a whole.
func WithSweepTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.sweepTimeout = d }
}

// WithClock sets the time source for delivery latency.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.clock = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithMetrics counts replay results.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// New creates a reconciler. A nil deliverer makes every drain a skip.
func New(q Queue, d remote.Deliverer, conn Connectivity, opts ...Option) *Reconciler {
	r := &Reconciler{
		queue:       q,
		deliverer:   d,
		conn:        conn,
		itemTimeout:  DefaultItemTimeout,
		sweepTimeout: DefaultSweepTimeout,
		clock:        time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Drain sweeps the queue once. Calls made while a sweep is running wait for
// it and receive its report.
//
// The sweep does not inherit ctx's cancellation, so a caller that gives up
// only stops waiting; the sweep finishes for the others within the sweep
// timeout.
func (r *Reconciler) Drain(ctx context.Context) (Report, error) {
	return r.sweep(ctx, context.WithoutCancel(ctx))
}

// sweep runs or joins the shared drain. The drain runs on base, bounded by
// the sweep timeout; ctx only governs how long this caller waits.
func (r *Reconciler) sweep(ctx, base context.Context) (Report, error) {
	ch := r.group.DoChan("drain", func() (interface{}, error) {
		sweepCtx, cancel := context.WithTimeout(base, r.sweepTimeout)
		defer cancel()
		return r.drain(sweepCtx)
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

func (r *Reconciler) drain(ctx context.Context) (Report, error) {
	var report Report
	if r.deliverer == nil || r.conn == nil || !r.conn.Online() {
		report.Skipped = true
		return report, nil
	}

	pending, err := r.queue.ListPending(ctx)
	if err != nil {
		return report, fmt.Errorf("reconcile: list pending: %w", err)
	}

	for _, qm := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Attempted++
		if err := r.deliver(ctx, qm.Mutation); err != nil {
			report.Failed++
			r.metrics.Reconciled(metrics.ResultFailed)
			r.logger.Warn("queued mutation not delivered",
				"seq", qm.Seq,
				"collection", qm.Collection,
				"operation", qm.Operation,
				"attempts", qm.Attempts+1,
				"error", err)
			if err := r.queue.RecordFailure(ctx, qm.Seq, err); err != nil && !model.IsNotFound(err) {
				r.logger.Error("record delivery failure", "seq", qm.Seq, "error", err)
			}
			continue
		}

		if err := r.queue.Remove(ctx, qm.Seq); err != nil && !model.IsNotFound(err) {
			// Delivered but still queued: the next drain redelivers it and
			// the remote drops it by idempotency key.
			r.logger.Error("remove delivered mutation", "seq", qm.Seq, "error", err)
		}
		report.Delivered++
		r.metrics.Reconciled(metrics.ResultDelivered)
	}

	r.logger.Info("sync queue drained",
		"attempted", report.Attempted,
		"delivered", report.Delivered,
		"failed", report.Failed)
	return report, nil
}

func (r *Reconciler) deliver(ctx context.Context, m model.Mutation) error {
	ctx, cancel := context.WithTimeout(ctx, r.itemTimeout)
	defer cancel()

	start := r.clock()
	err := r.deliverer.Deliver(ctx, m)
	r.metrics.ObserveDelivery(r.clock().Sub(start))
	return err
}

// Run drains once at start, then on every signal, until ctx is done.
// Drain errors are logged; Run only returns ctx.Err(). Run owns the
// reconciler's lifetime, so its sweeps stop when ctx ends.
func (r *Reconciler) Run(ctx context.Context, signal <-chan struct{}) error {
	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	if _, err := r.sweep(ctx, ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("drain failed", "error", err)
	}
}
