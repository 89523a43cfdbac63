// Package rawstore persists one immutable raw snapshot per series per
// run day, named {SOURCE}_{providerSeriesId}_{YYYY_MM_DD}.json. Files
// are write-once and never mutated.
package rawstore
