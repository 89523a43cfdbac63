// Package fetch implements the provider clients for FRED and BLS.
//
// Both clients share one HTTP core: a rate-limited request path with a
// bounded exponential-backoff retry loop. Transient failures (network
// errors, 5xx, 429) are retried up to the attempt limit; auth and
// validation failures fail immediately.
//
// The two providers differ in shape (FRED answers one series per GET,
// BLS answers every requested series in a single POST), but both clients
// expose the same contract: a map from series key to RawBatch, with
// failures reported per series so one bad series never discards the rest.
package fetch
