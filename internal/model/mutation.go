package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mutation is one logical change to one collection, in the shape the remote
// service's apply-mutation endpoint accepts.
//
// IdempotencyKey is generated on the device when the change is made and kept
// through every retry, so the remote side can detect a duplicate delivery.
type Mutation struct {
	IdempotencyKey string          `json:"idempotency_key"`
	Collection     Collection      `json:"collection"`
	Operation      Operation       `json:"operation"`
	Payload        json.RawMessage `json:"payload"`
}

// NewMutation snapshots payload as JSON and stamps a fresh idempotency key.
func NewMutation(ids IDGenerator, c Collection, op Operation, payload any) (Mutation, error) {
	if !c.Valid() {
		return Mutation{}, fmt.Errorf("new mutation: unknown collection %q", c)
	}
	if !op.Valid() {
		return Mutation{}, fmt.Errorf("new mutation: unknown operation %q", op)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Mutation{}, fmt.Errorf("new mutation: marshal payload: %w", err)
	}
	return Mutation{
		IdempotencyKey: ids.Generate(),
		Collection:     c,
		Operation:      op,
		Payload:        raw,
	}, nil
}

// DeletePayload is the payload of a delete mutation.
type DeletePayload struct {
	ID string `json:"id"`
}

// QueuedMutation is a mutation applied locally but not yet confirmed remotely.
type QueuedMutation struct {
	Mutation

	// Seq is assigned by the sync queue and strictly increases with enqueue order.
	Seq int64 `json:"seq"`

	EnqueuedAt time.Time `json:"enqueued_at"`

	// Attempts counts failed reconciliation deliveries.
	Attempts int `json:"attempts"`

	LastError string `json:"last_error,omitempty"`
}
