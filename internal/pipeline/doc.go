// Package pipeline sequences one ETL run: per-series fetch and revision
// check, normalization of changed series, and a single end-of-run
// reconciliation over the full staged batch.
//
// Failures are isolated per series. A bad series is recorded in the run
// report and never prevents independent series from completing.
package pipeline
