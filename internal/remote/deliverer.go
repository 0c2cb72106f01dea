// Package remote delivers mutations to the remote service.
//
// The remote side exposes one generic apply-mutation endpoint. A delivery is
// confirmed only when the remote acknowledges it; anything else (transport
// error, timeout, non-2xx reply) is a REMOTE_DELIVERY error and the caller
// falls back to the sync queue. The remote is expected to treat a repeated
// idempotency key as already applied.
package remote

import (
	"context"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

//go:generate mockgen -source=deliverer.go -destination=deliverer_mock.go -package=remote

// Deliverer sends one mutation to the remote service.
type Deliverer interface {
	// Deliver returns nil only once the remote has confirmed m.
	Deliver(ctx context.Context, m model.Mutation) error

	// Ping reports whether the remote is reachable. Used as a connectivity probe.
	Ping(ctx context.Context) error
}

// Ack is the remote's reply to a delivery.
type Ack struct {
	IdempotencyKey string `json:"idempotency_key"`

	// Duplicate is true when the key had already been applied.
	Duplicate bool `json:"duplicate"`

	Error string `json:"error,omitempty"`
}
