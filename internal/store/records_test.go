package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

func TestPutGet_CatalogItem(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	item := testItem("rice", "Rice", "grocery", "12.5")
	item.NameBn = "চাল"
	require.NoError(t, Put(ctx, s, item))

	got, err := Get[model.CatalogItem](ctx, s, "rice")
	require.NoError(t, err)
	assert.Equal(t, "Rice", got.Name)
	assert.Equal(t, "চাল", got.NameBn)
	assert.True(t, got.Stock.Equal(d("12.5")))
	assert.True(t, got.UpdatedAt.Equal(testTime))
}

func TestPut_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, Put(ctx, s, testItem("rice", "Rice", "grocery", "5")))
	require.NoError(t, Put(ctx, s, testItem("rice", "Miniket Rice", "grocery", "4")))

	got, err := Get[model.CatalogItem](ctx, s, "rice")
	require.NoError(t, err)
	assert.Equal(t, "Miniket Rice", got.Name)

	n, err := Count(ctx, s, model.CollectionCatalog, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Index columns follow the document.
	low := d("4.5")
	items, err := List[model.CatalogItem](ctx, s, Filter{StockBelow: &low})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPut_RejectsInvalidRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := Put(ctx, s, testItem("rice", "Rice", "grocery", "-1"))
	assert.True(t, model.IsValidation(err), "negative stock: %v", err)

	err = Put(ctx, s, testItem("", "Rice", "grocery", "1"))
	assert.True(t, model.IsValidation(err), "empty key: %v", err)
}

func TestSale_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sale := testSale("s1", testTime, "250", "150")
	sale.CustomerPhone = "01700000000"
	require.NoError(t, Put(ctx, s, sale))

	got, err := Get[model.SaleRecord](ctx, s, "s1")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, got.ID)
	assert.True(t, sale.SoldAt.Equal(got.SoldAt))
	assert.True(t, got.Total.Equal(d("250")))
	assert.True(t, got.Due.Equal(d("100")))
	assert.Equal(t, "Rahim", got.CustomerName)
	assert.Equal(t, "01700000000", got.CustomerPhone)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Rice", got.Items[0].Name)
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := Get[model.ExpenseRecord](context.Background(), s, "nope")
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
	assert.Contains(t, err.Error(), `expenses "nope" not found`)
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, s, model.ExpenseRecord{
		ID: "e1", Description: "Rent", Amount: d("5000"), Category: "rent", SpentAt: testTime,
	}))

	require.NoError(t, Delete(ctx, s, model.CollectionExpenses, "e1"))

	_, err := Get[model.ExpenseRecord](ctx, s, "e1")
	assert.True(t, model.IsNotFound(err))

	err = Delete(ctx, s, model.CollectionExpenses, "e1")
	assert.True(t, model.IsNotFound(err), "second delete: %v", err)
}

func TestDelete_UnknownCollection(t *testing.T) {
	s := createTestStore(t)

	err := Delete(context.Background(), s, model.Collection("widgets"), "x")
	assert.True(t, model.IsValidation(err))
}

func TestList_CatalogFilters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	for _, item := range []model.CatalogItem{
		testItem("rice", "Rice", "grocery", "25"),
		testItem("dal", "Dal", "grocery", "4"),
		testItem("soap", "Soap", "toiletries", "2"),
	} {
		require.NoError(t, Put(ctx, s, item))
	}

	all, err := List[model.CatalogItem](ctx, s, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dal", "rice", "soap"}, itemIDs(all), "default sort is by name")

	grocery, err := List[model.CatalogItem](ctx, s, Filter{Category: "grocery"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dal", "rice"}, itemIDs(grocery))

	ten := decimal.NewFromInt(10)
	low, err := List[model.CatalogItem](ctx, s, Filter{StockBelow: &ten, Sort: "stock"})
	require.NoError(t, err)
	assert.Equal(t, []string{"soap", "dal"}, itemIDs(low))

	limited, err := List[model.CatalogItem](ctx, s, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	items, err := List[model.CatalogItem](context.Background(), s, Filter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestList_UnsupportedFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := List[model.CatalogItem](ctx, s, Filter{DueOnly: true})
	assert.True(t, model.IsValidation(err), "due filter on catalog: %v", err)

	_, err = List[model.UserCredential](ctx, s, Filter{Category: "x"})
	assert.True(t, model.IsValidation(err), "category filter on users: %v", err)

	_, err = List[model.SaleRecord](ctx, s, Filter{Sort: "doc"})
	assert.True(t, model.IsValidation(err), "unknown sort key: %v", err)

	_, err = List[model.CatalogItem](ctx, s, Filter{CustomerPhone: "01711000000"})
	assert.True(t, model.IsValidation(err), "phone filter on catalog: %v", err)

	_, err = List[model.ExpenseRecord](ctx, s, Filter{CustomerPhone: "01711000000"})
	assert.True(t, model.IsValidation(err), "phone filter on expenses: %v", err)
}

func TestList_SalesByCustomerPhone(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	day := 24 * time.Hour

	for _, tc := range []struct {
		id, phone, paid string
		at            time.Time
	}{
		{"s1", "01711000000", "100", testTime},
		{"s2", "01899000000", "20", testTime.Add(day)},
		{"s3", "01711000000", "40", testTime.Add(2 * day)},
		{"s4", "", "0", testTime.Add(3 * day)},
	} {
		sale := testSale(tc.id, tc.at, "100", tc.paid)
		sale.CustomerPhone = tc.phone
		require.NoError(t, Put(ctx, s, sale))
	}

	sales, err := List[model.SaleRecord](ctx, s, Filter{CustomerPhone: "01711000000", Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, saleIDs(sales))

	due, err := List[model.SaleRecord](ctx, s, Filter{CustomerPhone: "01711000000", DueOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3"}, saleIDs(due))

	none, err := List[model.SaleRecord](ctx, s, Filter{CustomerPhone: "01500000000"})
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := Count(ctx, s, model.CollectionSales, Filter{CustomerPhone: "01899000000"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestList_SalesByTimeAndDue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	day := 24 * time.Hour
	require.NoError(t, Put(ctx, s, testSale("s1", testTime, "100", "100")))
	require.NoError(t, Put(ctx, s, testSale("s2", testTime.Add(day), "200", "50")))
	require.NoError(t, Put(ctx, s, testSale("s3", testTime.Add(2*day), "300", "0")))

	window, err := List[model.SaleRecord](ctx, s, Filter{From: testTime.Add(day), To: testTime.Add(2 * day)})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, saleIDs(window), "To is exclusive")

	due, err := List[model.SaleRecord](ctx, s, Filter{DueOnly: true, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s2"}, saleIDs(due))

	n, err := Count(ctx, s, model.CollectionSales, Filter{DueOnly: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "Count ignores Limit")
}

func TestListOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, Put(ctx, s, testItem("a", "Apple", "fruit", "3")))
	require.NoError(t, Put(ctx, s, testItem("b", "Banana", "fruit", "9")))
	require.NoError(t, Put(ctx, s, testItem("c", "Cherry", "fruit", "3")))

	desc, err := ListOrdered[model.CatalogItem](ctx, s, "stock", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, itemIDs(desc), "ties broken by id")

	asc, err := ListOrdered[model.CatalogItem](ctx, s, "stock", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, itemIDs(asc))

	_, err = ListOrdered[model.CatalogItem](ctx, s, "price", true)
	assert.True(t, model.IsValidation(err))
}

func itemIDs(items []model.CatalogItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func saleIDs(sales []model.SaleRecord) []string {
	ids := make([]string, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	return ids
}
