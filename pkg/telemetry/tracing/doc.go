// Package tracing sets up OpenTelemetry tracing for the agent. The
// instrumentation entry point opens one span per handled call when tracing
// is enabled; a disabled tracer degrades to noop spans with negligible
// overhead.
package tracing
