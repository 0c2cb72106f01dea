// Package service implements the shop operations built on the data layer:
// catalog maintenance, expenses, sale lookups and reports.
//
// Every write goes through the mutation executor, so it is durable locally
// first and then delivered or queued. Catalog writes take the same per-item
// locks as checkout.
package service

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/mutation"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// DefaultLowStockThreshold marks items with fewer units on hand as low.
const DefaultLowStockThreshold = 10

// Service bundles the shop operations.
type Service struct {
	store     *store.Store
	exec      *mutation.Executor
	locker    *mutation.Locker
	ids       model.IDGenerator
	clock     model.Clock
	logger    *slog.Logger
	threshold decimal.Decimal
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator sets the generator for record ids and idempotency keys.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithClock sets the clock for record timestamps and report windows.
func WithClock(c model.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithLowStockThreshold overrides DefaultLowStockThreshold.
func WithLowStockThreshold(n int) Option {
	return func(s *Service) { s.threshold = decimal.NewFromInt(int64(n)) }
}

// New creates a Service. locker must be the one checkout uses.
func New(st *store.Store, exec *mutation.Executor, locker *mutation.Locker, opts ...Option) *Service {
	s := &Service{
		store:     st,
		exec:      exec,
		locker:    locker,
		ids:       model.UUIDv7Generator{},
		clock:     model.SystemClock{},
		logger:    slog.Default(),
		threshold: decimal.NewFromInt(DefaultLowStockThreshold),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
