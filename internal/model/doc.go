// Package model defines the core data types shared across the pipeline:
// series descriptors, raw fetch batches, normalized fact/dimension rows,
// and persisted per-series fetch state.
package model
