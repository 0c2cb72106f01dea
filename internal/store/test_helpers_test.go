package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// createTestStore opens a fresh store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testItem(id, name, category, stock string) model.CatalogItem {
	return model.CatalogItem{
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     d("100"),
		Cost:      d("80"),
		Stock:     d(stock),
		Unit:      model.DefaultUnit,
		UpdatedAt: testTime,
	}
}

func testSale(id string, soldAt time.Time, total, paid string) model.SaleRecord {
	t, p := d(total), d(paid)
	return model.SaleRecord{
		ID:     id,
		SoldAt: soldAt,
		Items: []model.LineItem{
			{ItemID: "rice", Name: "Rice", Unit: "kg", Quantity: d("1"), Price: t, Cost: d("0")},
		},
		Total:         t,
		Profit:        t,
		Paid:          p,
		Due:           model.ClampZero(t.Sub(p)),
		PaymentMethod: model.PaymentCash,
		CustomerName:  "Rahim",
	}
}

func testMutation(key string) model.Mutation {
	return model.Mutation{
		IdempotencyKey: key,
		Collection:     model.CollectionCatalog,
		Operation:      model.OpUpdate,
		Payload:        []byte(`{"id":"rice"}`),
	}
}
