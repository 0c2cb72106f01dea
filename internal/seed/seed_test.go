package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
	tu "github.com/iir20/amar-dokan-pos-system/internal/testutil"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, c.Items)

	items, err := c.Records(tu.Epoch)
	require.NoError(t, err)
	for _, it := range items {
		assert.NotEmpty(t, it.Name)
		assert.NotEmpty(t, it.Unit)
		assert.True(t, it.UpdatedAt.Equal(tu.Epoch))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "items:\n  - id: a\n    colour: red\n"},
		{"not yaml", "items: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
}

func TestRecords_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative stock", "items:\n  - {id: a, name: A, category: x, stock: \"-1\"}\n"},
		{"bad price", "items:\n  - {id: a, name: A, category: x, price: lots}\n"},
		{"missing name", "items:\n  - {id: a, category: x}\n"},
		{"duplicate id", "items:\n  - {id: a, name: A, category: x}\n  - {id: a, name: B, category: x}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(strings.NewReader(tt.doc))
			require.NoError(t, err)
			_, err = c.Records(tu.Epoch)
			assert.True(t, model.IsValidation(err), "got %v", err)
		})
	}
}

func TestIfFresh(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dokan.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	n, err := IfFresh(ctx, s, "", tu.Epoch)
	require.NoError(t, err)
	want, err := Default()
	require.NoError(t, err)
	assert.Equal(t, len(want.Items), n)

	items, err := store.List[model.CatalogItem](ctx, s, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, items, n)

	pending, err := store.PendingCount(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, pending, "seeding is not synced")
	require.NoError(t, s.Close())

	// Reopening an initialized store never reseeds.
	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err = IfFresh(ctx, s, "", tu.Epoch)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIfFresh_Override(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`items:
  - id: pen
    name: Ball Pen
    name_bn: কলম
    category: stationery
    price: "10"
    stock: "2.5"
`), 0o644))

	s := tu.OpenStore(t)
	n, err := IfFresh(ctx, s, file, tu.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pen, err := store.Get[model.CatalogItem](ctx, s, "pen")
	require.NoError(t, err)
	assert.Equal(t, "2.5", pen.Stock.String())
	assert.Equal(t, model.DefaultUnit, pen.Unit)
	assert.True(t, pen.Cost.IsZero())

	_, err = IfFresh(ctx, tu.OpenStore(t), filepath.Join(t.TempDir(), "missing.yaml"), tu.Epoch)
	assert.Error(t, err)
}
