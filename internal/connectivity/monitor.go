// Package connectivity holds the process-wide online/offline state.
//
// A Monitor is created once at startup and passed explicitly to the
// components that read it (mutation executor, reconciler). It is updated by an
// external notifier, either a caller of Set or Watch polling a Prober.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Prober checks whether the remote service is reachable.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor tracks connectivity and signals offline→online transitions.
//
// BecameOnline uses a channel with a buffer of one: several transitions that
// happen before the reader wakes collapse into one signal.
//
// Thread-safety: all methods are safe for concurrent use.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	signal chan struct{}
	logger *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// New creates a monitor with the given initial state. Starting online does
// not emit a signal.
func New(initial bool, opts ...Option) *Monitor {
	m := &Monitor{
		online: initial,
		signal: make(chan struct{}, 1),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Set updates the state. An offline→online edge emits a BecameOnline signal;
// setting the same state again does nothing.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	was := m.online
	m.online = online
	m.mu.Unlock()

	if was == online {
		return
	}
	m.logger.Info("connectivity changed", "online", online)

	if online {
		// Non-blocking; a pending signal already covers this edge.
		select {
		case m.signal <- struct{}{}:
		default:
		}
	}
}

// BecameOnline returns the edge-triggered reconnect channel.
func (m *Monitor) BecameOnline() <-chan struct{} {
	return m.signal
}

// Watch probes p every interval and feeds the result into Set until ctx is
// done. Each probe is bounded by interval. Returns ctx.Err().
func (m *Monitor) Watch(ctx context.Context, p Prober, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.probe(ctx, p, interval)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probe(ctx context.Context, p Prober, timeout time.Duration) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.Ping(probeCtx)
	if err != nil && ctx.Err() != nil {
		return
	}
	if err != nil {
		m.logger.Debug("connectivity probe failed", "error", err)
	}
	m.Set(err == nil)
}
