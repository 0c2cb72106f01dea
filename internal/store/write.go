package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// Put upserts rec into its collection. The JSON document and every index
// column are replaced together in one statement.
//
// Records that would break a table invariant (empty key, negative stock,
// negative due) are rejected with a VALIDATION error before touching SQLite.
func Put(ctx context.Context, q Querier, rec model.Record) error {
	spec, err := specFor(rec.Collection())
	if err != nil {
		return err
	}
	if err := checkRecord(rec); err != nil {
		return err
	}

	values, err := indexValues(rec)
	if err != nil {
		return fmt.Errorf("store.put: %w", err)
	}
	doc, err := marshalDoc(rec)
	if err != nil {
		return fmt.Errorf("store.put: %w", err)
	}

	cols := append([]string{spec.key}, spec.columns...)
	cols = append(cols, "doc")
	args := append([]any{rec.Key()}, values...)
	args = append(args, doc)

	updates := make([]string, 0, len(cols)-1)
	for _, col := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		spec.name,
		strings.Join(cols, ", "),
		placeholders(len(cols)),
		spec.key,
		strings.Join(updates, ", "),
	)

	if _, err := q.conn().ExecContext(ctx, query, args...); err != nil {
		return wrapErr("store.put", err)
	}
	return nil
}

// Delete removes the record with the given key.
// Returns a NOT_FOUND error if no such record exists.
func Delete(ctx context.Context, q Querier, c model.Collection, id string) error {
	spec, err := specFor(c)
	if err != nil {
		return err
	}

	result, err := q.conn().ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", spec.name, spec.key), id)
	if err != nil {
		return wrapErr("store.delete", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return wrapErr("store.delete: rows affected", err)
	}
	if n == 0 {
		return model.NotFound("store.delete", c, id)
	}
	return nil
}

func checkRecord(rec model.Record) error {
	if strings.TrimSpace(rec.Key()) == "" {
		return model.Validation("store.put", "record key is empty",
			map[string]string{"key": "required"})
	}
	switch r := rec.(type) {
	case model.CatalogItem:
		if r.Stock.IsNegative() {
			return model.Validation("store.put", "stock must not be negative",
				map[string]string{"stock": r.Stock.String()})
		}
	case model.SaleRecord:
		if r.Due.IsNegative() {
			return model.Validation("store.put", "due must not be negative",
				map[string]string{"due": r.Due.String()})
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
