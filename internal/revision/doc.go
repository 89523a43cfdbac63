// Package revision detects whether provider content changed between runs.
//
// Each series has one persisted state record (content hash, last observed
// date, fetched-at). A run skips normalization and reconciliation for any
// series whose canonical payload hashes to the stored value.
package revision
