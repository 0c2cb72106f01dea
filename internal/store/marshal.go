package store

import (
	"encoding/json"
	"fmt"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// tableSpec describes how a collection maps onto its SQLite table.
type tableSpec struct {
	// name is the table name; it equals the collection name.
	name string

	// key is the primary key column.
	key string

	// columns are the index columns written alongside doc, in the order
	// indexValues returns them.
	columns []string

	// timeColumn is the column From/To filter on ("" if unsupported).
	timeColumn string

	// sortKeys maps accepted ListOrdered sort keys to columns.
	sortKeys map[string]string

	// defaultSort is used by List when Filter.Sort is empty.
	defaultSort string

	// filters lists the Filter fields the collection supports.
	filters map[filterField]bool
}

var tables = map[model.Collection]tableSpec{
	model.CollectionCatalog: {
		name:    "catalog_items",
		key:     "id",
		columns: []string{"name", "name_bn", "category", "stock", "updated_at"},
		sortKeys: map[string]string{
			"id": "id", "name": "name", "category": "category", "stock": "stock", "updated_at": "updated_at",
		},
		defaultSort: "name",
		filters:     map[filterField]bool{filterCategory: true, filterStockBelow: true},
	},
	model.CollectionSales: {
		name:       "sales",
		key:        "id",
		columns:    []string{"sold_at", "customer_name", "customer_phone", "total", "due"},
		timeColumn: "sold_at",
		sortKeys: map[string]string{
			"id": "id", "sold_at": "sold_at", "total": "total", "due": "due", "customer_name": "customer_name",
		},
		defaultSort: "sold_at",
		filters:     map[filterField]bool{filterTime: true, filterDueOnly: true, filterCustomerPhone: true},
	},
	model.CollectionExpenses: {
		name:       "expenses",
		key:        "id",
		columns:    []string{"spent_at", "category", "amount"},
		timeColumn: "spent_at",
		sortKeys: map[string]string{
			"id": "id", "spent_at": "spent_at", "category": "category", "amount": "amount",
		},
		defaultSort: "spent_at",
		filters:     map[filterField]bool{filterCategory: true, filterTime: true},
	},
	model.CollectionUsers: {
		name:        "users",
		key:         "username",
		sortKeys:    map[string]string{"username": "username"},
		defaultSort: "username",
		filters:     map[filterField]bool{},
	},
}

func specFor(c model.Collection) (tableSpec, error) {
	spec, ok := tables[c]
	if !ok {
		return tableSpec{}, model.Validation("store", fmt.Sprintf("unknown collection %q", c), nil)
	}
	return spec, nil
}

// indexValues extracts the index column values for rec, matching spec.columns.
func indexValues(rec model.Record) ([]any, error) {
	switch r := rec.(type) {
	case model.CatalogItem:
		return []any{
			r.Name,
			r.NameBn,
			r.Category,
			r.Stock.InexactFloat64(),
			formatTime(r.UpdatedAt),
		}, nil
	case model.SaleRecord:
		return []any{
			formatTime(r.SoldAt),
			r.CustomerName,
			r.CustomerPhone,
			r.Total.InexactFloat64(),
			r.Due.InexactFloat64(),
		}, nil
	case model.ExpenseRecord:
		return []any{
			formatTime(r.SpentAt),
			r.Category,
			r.Amount.InexactFloat64(),
		}, nil
	case model.UserCredential:
		return nil, nil
	case *model.CatalogItem:
		return indexValues(*r)
	case *model.SaleRecord:
		return indexValues(*r)
	case *model.ExpenseRecord:
		return indexValues(*r)
	case *model.UserCredential:
		return indexValues(*r)
	default:
		return nil, fmt.Errorf("unsupported record type %T", rec)
	}
}

// marshalDoc serializes a record for the doc column.
func marshalDoc(rec model.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", rec.Collection(), err)
	}
	return string(data), nil
}

// unmarshalDoc decodes a doc column into a T.
func unmarshalDoc[T model.Record](doc string) (T, error) {
	var rec T
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return rec, fmt.Errorf("unmarshal %s: %w", rec.Collection(), err)
	}
	return rec, nil
}
