package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if !s.Fresh() {
		t.Error("new database should report Fresh()")
	}
}

func TestOpen_ReopenIsNotFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	if s2.Fresh() {
		t.Error("reopened database should not report Fresh()")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"catalog_items", "sales", "expenses", "users", "sync_queue", "session"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_MissingDirectoryIsStoreUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "test.db")

	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, model.IsStoreUnavailable(err), "got %v", err)
}

func TestClosedStoreIsStoreUnavailable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	err := Put(ctx, s, testItem("rice", "Rice", "grocery", "5"))
	assert.True(t, model.IsStoreUnavailable(err), "put: %v", err)

	_, err = Get[model.CatalogItem](ctx, s, "rice")
	assert.True(t, model.IsStoreUnavailable(err), "get: %v", err)

	assert.True(t, model.IsStoreUnavailable(s.Ping(ctx)))
}

func TestUpdate_CommitsAllCollections(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		if err := Put(ctx, tx, testItem("rice", "Rice", "grocery", "3")); err != nil {
			return err
		}
		return Put(ctx, tx, testSale("s1", testTime, "200", "200"))
	})
	require.NoError(t, err)

	item, err := Get[model.CatalogItem](ctx, s, "rice")
	require.NoError(t, err)
	assert.Equal(t, "3", item.Stock.String())

	_, err = Get[model.SaleRecord](ctx, s, "s1")
	require.NoError(t, err)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, s, testItem("rice", "Rice", "grocery", "5")))

	boom := model.Validation("test", "boom", nil)
	err := s.Update(ctx, func(tx *Tx) error {
		if err := Put(ctx, tx, testSale("s1", testTime, "200", "200")); err != nil {
			return err
		}
		if err := Put(ctx, tx, testItem("rice", "Rice", "grocery", "1")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = Get[model.SaleRecord](ctx, s, "s1")
	assert.True(t, model.IsNotFound(err), "sale should be rolled back: %v", err)

	item, err := Get[model.CatalogItem](ctx, s, "rice")
	require.NoError(t, err)
	assert.Equal(t, "5", item.Stock.String())
}

func TestUpdate_CanceledContextPassesThrough(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Update(ctx, func(tx *Tx) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, model.IsStoreUnavailable(err))
}
