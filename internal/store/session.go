package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session is the single active login. It references a user record but is
// stored apart from it.
type Session struct {
	Username  string
	StartedAt time.Time
}

// SaveSession replaces the active session. The user must exist.
func SaveSession(ctx context.Context, q Querier, s Session) error {
	_, err := q.conn().ExecContext(ctx, `
		INSERT INTO session (id, username, started_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username, started_at = excluded.started_at
	`, s.Username, formatTime(s.StartedAt))
	if err != nil {
		return wrapErr("store.save_session", err)
	}
	return nil
}

// LoadSession returns the active session, or ok=false if nobody is logged in.
func LoadSession(ctx context.Context, q Querier) (Session, bool, error) {
	var (
		s       Session
		started string
	)
	err := q.conn().QueryRowContext(ctx,
		"SELECT username, started_at FROM session WHERE id = 1").Scan(&s.Username, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, wrapErr("store.load_session", err)
	}
	s.StartedAt, err = parseTime(started)
	if err != nil {
		return Session{}, false, fmt.Errorf("store.load_session: parse started_at: %w", err)
	}
	return s, true, nil
}

// ClearSession ends the active session. Clearing when nobody is logged in is
// not an error.
func ClearSession(ctx context.Context, q Querier) error {
	if _, err := q.conn().ExecContext(ctx, "DELETE FROM session WHERE id = 1"); err != nil {
		return wrapErr("store.clear_session", err)
	}
	return nil
}
