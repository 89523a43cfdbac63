// Package store manages the destination PostgreSQL database: connection
// pooling, schema bootstrap, and the upsert reconciler that folds
// normalized rows into the fact and dimension tables.
//
// Reconciliation for a run is one transaction. Each fact row is inserted
// when absent at its natural key, updated in place when the stored value
// differs, and counted as unchanged otherwise, so replaying identical
// input yields zero writes.
package store
