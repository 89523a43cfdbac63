// Package normalize converts raw provider batches into typed fact and
// dimension rows.
//
// Missing-value sentinels (FRED ".", BLS "-", and blank strings) collapse
// to a nil value. Any other non-numeric token drops only that observation,
// recorded as a warning; the rest of the batch still processes.
package normalize
