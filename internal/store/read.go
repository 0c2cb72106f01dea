package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// Get retrieves a single record by key.
// Returns a NOT_FOUND error if the record does not exist.
func Get[T model.Record](ctx context.Context, q Querier, id string) (T, error) {
	var zero T
	spec, err := specFor(zero.Collection())
	if err != nil {
		return zero, err
	}

	var doc string
	err = q.conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE %s = ?", spec.name, spec.key), id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, model.NotFound("store.get", zero.Collection(), id)
	}
	if err != nil {
		return zero, wrapErr("store.get", err)
	}

	return unmarshalDoc[T](doc)
}

// List returns the records of T's collection matching f.
//
// Returns an empty slice (not nil) if nothing matches.
func List[T model.Record](ctx context.Context, q Querier, f Filter) ([]T, error) {
	var zero T
	spec, err := specFor(zero.Collection())
	if err != nil {
		return nil, err
	}

	tail, args, err := f.build(spec)
	if err != nil {
		return nil, err
	}

	rows, err := q.conn().QueryContext(ctx,
		fmt.Sprintf("SELECT doc FROM %s%s", spec.name, tail), args...)
	if err != nil {
		return nil, wrapErr("store.list", err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, wrapErr("store.list: scan", err)
		}
		rec, err := unmarshalDoc[T](doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("store.list: iterate", err)
	}

	return records, nil
}

// ListOrdered returns every record of T's collection sorted by sortKey.
// The primary key breaks ties. Unknown sort keys are a VALIDATION error.
func ListOrdered[T model.Record](ctx context.Context, q Querier, sortKey string, ascending bool) ([]T, error) {
	return List[T](ctx, q, Filter{Sort: sortKey, Descending: !ascending})
}

// Count returns how many records of collection c match f.
// Sort and Limit are ignored.
func Count(ctx context.Context, q Querier, c model.Collection, f Filter) (int, error) {
	spec, err := specFor(c)
	if err != nil {
		return 0, err
	}

	f.Sort, f.Descending, f.Limit = "", false, 0
	tail, args, err := f.build(spec)
	if err != nil {
		return 0, err
	}

	var n int
	if err := q.conn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.name, tail), args...,
	).Scan(&n); err != nil {
		return 0, wrapErr("store.count", err)
	}
	return n, nil
}
