package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

type filterField string

const (
	filterCategory      filterField = "category"
	filterStockBelow    filterField = "stock_below"
	filterTime          filterField = "time_range"
	filterDueOnly       filterField = "due_only"
	filterCustomerPhone filterField = "customer_phone"
)

// Filter narrows List results. Zero-valued fields are ignored. Setting a field
// the collection has no index for is a VALIDATION error rather than a silent
// full scan.
type Filter struct {
	// Category matches catalog items or expenses exactly.
	Category string

	// StockBelow keeps catalog items whose stock is strictly less than it.
	StockBelow *decimal.Decimal

	// From and To bound sales.sold_at or expenses.spent_at to [From, To).
	From time.Time
	To   time.Time

	// DueOnly keeps sales with an unpaid balance.
	DueOnly bool

	// CustomerPhone matches sales exactly.
	CustomerPhone string

	// Sort is a sort key accepted by the collection; empty uses its default.
	Sort string

	// Descending reverses the sort.
	Descending bool

	// Limit caps the number of results; zero means no limit.
	Limit int
}

// build renders the WHERE/ORDER BY/LIMIT tail of a query for spec.
func (f Filter) build(spec tableSpec) (string, []any, error) {
	var (
		conds []string
		args  []any
	)

	require := func(field filterField) error {
		if !spec.filters[field] {
			return model.Validation("store.list",
				fmt.Sprintf("filter %s not supported on %s", field, spec.name), nil)
		}
		return nil
	}

	if f.Category != "" {
		if err := require(filterCategory); err != nil {
			return "", nil, err
		}
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.StockBelow != nil {
		if err := require(filterStockBelow); err != nil {
			return "", nil, err
		}
		conds = append(conds, "stock < ?")
		args = append(args, f.StockBelow.InexactFloat64())
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if err := require(filterTime); err != nil {
			return "", nil, err
		}
		if !f.From.IsZero() {
			conds = append(conds, spec.timeColumn+" >= ?")
			args = append(args, formatTime(f.From))
		}
		if !f.To.IsZero() {
			conds = append(conds, spec.timeColumn+" < ?")
			args = append(args, formatTime(f.To))
		}
	}
	if f.DueOnly {
		if err := require(filterDueOnly); err != nil {
			return "", nil, err
		}
		conds = append(conds, "due > 0")
	}
	if f.CustomerPhone != "" {
		if err := require(filterCustomerPhone); err != nil {
			return "", nil, err
		}
		conds = append(conds, "customer_phone = ?")
		args = append(args, f.CustomerPhone)
	}

	sortKey := f.Sort
	if sortKey == "" {
		sortKey = spec.defaultSort
	}
	column, ok := spec.sortKeys[sortKey]
	if !ok {
		return "", nil, model.Validation("store.list",
			fmt.Sprintf("sort key %q not supported on %s", sortKey, spec.name), nil)
	}
	dir := "ASC"
	if f.Descending {
		dir = "DESC"
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	// Primary key breaks ties so results are deterministic.
	fmt.Fprintf(&b, " ORDER BY %s %s", column, dir)
	if column != spec.key {
		fmt.Fprintf(&b, ", %s %s", spec.key, dir)
	}
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	return b.String(), args, nil
}
