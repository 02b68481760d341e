// Package metrics exposes the agent's own operational metrics through
// Prometheus: intercepted-call counts, skip reasons, extraction misses,
// handler latency, token histograms, and locator cache sizes.
//
// The collector is nil-safe: every recording method on a nil or disabled
// collector is a no-op, so callers never need to guard metric calls.
package metrics
