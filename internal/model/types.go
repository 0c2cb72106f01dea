package model

import "fmt"

// Collection names one of the durable record collections.
type Collection string

const (
	CollectionCatalog  Collection = "catalog_items"
	CollectionSales    Collection = "sales"
	CollectionExpenses Collection = "expenses"
	CollectionUsers    Collection = "users"
)

// Collections lists every collection in schema order.
var Collections = []Collection{
	CollectionCatalog,
	CollectionSales,
	CollectionExpenses,
	CollectionUsers,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Operation is the kind of change a mutation applies.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Valid reports whether op is create, update or delete.
func (op Operation) Valid() bool {
	switch op {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// ParseOperation converts a wire string to an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}

// Record is implemented by every value stored in a collection.
type Record interface {
	Collection() Collection
	Key() string
}
