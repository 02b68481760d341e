// Package instrument is the agent's entry point: it wires catalog hooks to
// an interceptor and handles each intercepted call by filtering unsafe
// callers, requiring an active session context, normalizing the call result,
// and extracting usage telemetry into records delivered to a sink.
//
// The handler is fault-isolated: no panic inside it ever reaches the
// intercepted SDK call. Failures degrade to a skipped record or a partial
// record, never to an error surfaced to the host application.
package instrument
