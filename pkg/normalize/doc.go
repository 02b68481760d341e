// Package normalize unwraps intercepted call results into their real
// payloads.
//
// SDK methods rarely return their payload bare: it arrives inside an
// asynchronous single-value container, a lazily streamed sequence, or a
// vendor response wrapper. The caller has no compile-time knowledge of any
// of these types, so recognition works by runtime type-name and structure
// inspection.
//
// Normalize removes exactly one wrapper layer and is idempotent on values
// that match no known wrapper shape. Streaming sequences are materialized
// eagerly through a JSON round trip: universal across enumerable shapes, at
// the cost of returning the wrapper unchanged when serialization fails.
// Normalization never raises past its boundary.
package normalize
