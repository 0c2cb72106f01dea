// Package model defines the records the point-of-sale data layer persists and
// syncs: catalog items, sales, expenses, user credentials, and the mutations
// that carry changes to the remote service.
//
// Records are plain values. Sale line items are snapshots taken at checkout
// time and never reference a live CatalogItem, so later catalog edits cannot
// rewrite sales history.
//
// Monetary amounts and stock quantities use decimal.Decimal to avoid float
// drift in totals and stock arithmetic.
package model
