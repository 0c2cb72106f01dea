package store

import (
	"context"
	"fmt"
	"time"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// EnqueueMutation appends m to the sync queue and returns its sequence number.
// Sequence numbers come from AUTOINCREMENT and are never reused, even after
// the queue has been emptied.
func EnqueueMutation(ctx context.Context, q Querier, m model.Mutation, at time.Time) (int64, error) {
	if !m.Collection.Valid() || !m.Operation.Valid() {
		return 0, model.Validation("store.enqueue",
			fmt.Sprintf("invalid mutation %s/%s", m.Collection, m.Operation), nil)
	}
	payload := string(m.Payload)
	if payload == "" {
		payload = "null"
	}

	result, err := q.conn().ExecContext(ctx, `
		INSERT INTO sync_queue (idempotency_key, collection, operation, payload, enqueued_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.IdempotencyKey, string(m.Collection), string(m.Operation), payload, formatTime(at))
	if err != nil {
		return 0, wrapErr("store.enqueue", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, wrapErr("store.enqueue: last insert id", err)
	}
	return seq, nil
}

// PendingMutations returns queued mutations oldest first. A limit of zero
// returns every entry.
func PendingMutations(ctx context.Context, q Querier, limit int) ([]model.QueuedMutation, error) {
	query := `
		SELECT seq, idempotency_key, collection, operation, payload, enqueued_at, attempts, last_error
		FROM sync_queue
		ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("store.pending", err)
	}
	defer rows.Close()

	pending := []model.QueuedMutation{}
	for rows.Next() {
		var (
			qm          model.QueuedMutation
			collection  string
			operation   string
			payload     string
			enqueuedStr string
		)
		if err := rows.Scan(&qm.Seq, &qm.IdempotencyKey, &collection, &operation,
			&payload, &enqueuedStr, &qm.Attempts, &qm.LastError); err != nil {
			return nil, wrapErr("store.pending: scan", err)
		}

		qm.Collection = model.Collection(collection)
		qm.Operation, err = model.ParseOperation(operation)
		if err != nil {
			return nil, fmt.Errorf("store.pending: seq %d: %w", qm.Seq, err)
		}
		qm.Payload = []byte(payload)
		qm.EnqueuedAt, err = parseTime(enqueuedStr)
		if err != nil {
			return nil, fmt.Errorf("store.pending: seq %d: parse enqueued_at: %w", qm.Seq, err)
		}
		pending = append(pending, qm)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("store.pending: iterate", err)
	}

	return pending, nil
}

// RemoveMutation deletes a confirmed entry.
// Returns a NOT_FOUND error if seq is not queued.
func RemoveMutation(ctx context.Context, q Querier, seq int64) error {
	result, err := q.conn().ExecContext(ctx, "DELETE FROM sync_queue WHERE seq = ?", seq)
	if err != nil {
		return wrapErr("store.remove", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapErr("store.remove: rows affected", err)
	}
	if n == 0 {
		return model.NotFound("store.remove", "sync_queue", fmt.Sprint(seq))
	}
	return nil
}

// RecordAttempt bumps the attempt counter of seq and stores the failure.
func RecordAttempt(ctx context.Context, q Querier, seq int64, cause string) error {
	result, err := q.conn().ExecContext(ctx,
		"UPDATE sync_queue SET attempts = attempts + 1, last_error = ? WHERE seq = ?", cause, seq)
	if err != nil {
		return wrapErr("store.record_attempt", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapErr("store.record_attempt: rows affected", err)
	}
	if n == 0 {
		return model.NotFound("store.record_attempt", "sync_queue", fmt.Sprint(seq))
	}
	return nil
}

// PendingCount returns the number of queued mutations.
func PendingCount(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM sync_queue").Scan(&n); err != nil {
		return 0, wrapErr("store.pending_count", err)
	}
	return n, nil
}
