package testutil

import (
	"path/filepath"
	"testing"

	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// OpenStore opens a fresh SQLite store in t's temp dir and closes it on
// cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "dokan.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
