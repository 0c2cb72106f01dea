// Package store provides SQLite-backed durable storage for the point-of-sale
// data layer.
//
// The store holds four record collections plus two bookkeeping tables:
//   - catalog_items: products, indexed by category and stock (low-stock queries)
//   - sales: completed checkouts, indexed by sold_at, customer_phone and due
//   - expenses: indexed by spent_at and category
//   - users: local credentials, keyed by username
//   - sync_queue: mutations applied locally but not yet confirmed remotely
//   - session: the single active login, kept apart from the users table
//
// Each record is stored as a JSON document next to the columns that index it.
// The document is the source of truth; index columns are derived on every Put.
//
// # Atomicity
//
// Single-record operations (Get, Put, Delete) are atomic on their own.
// Update runs a function inside one SQLite transaction so several collections
// can be written as a unit. Checkout relies on this to record a sale and
// decrement stock together.
//
// # Ordering
//
// Queries always end with the primary key as a tie-breaker so results are
// deterministic. Timestamps are stored as fixed-width UTC strings and sort
// lexicographically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Driver failures surface as model STORE_UNAVAILABLE errors; a missing key on
// Get or Delete surfaces as NOT_FOUND.
package store
