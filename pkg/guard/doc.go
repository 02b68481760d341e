// Package guard decides whether the current interception callback is safe
// to run.
//
// Runtime patchers, dynamic-proxy generators, APM agents, and script engines
// rewrite or wrap methods the agent has already hooked. Running inside their
// call chains re-enters the instrumentation or double-counts calls, so the
// guard walks the active call stack and suppresses instrumentation when the
// first external caller belongs to one of those toolchains.
//
// The guard fails open: when the stack cannot be inspected it reports that
// instrumentation may proceed, since over-counting is preferred to silently
// losing all telemetry.
package guard
