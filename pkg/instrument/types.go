package instrument

import (
	"mercator-hq/argus/pkg/locator"
)

// InspectionKindAIOp marks inspection records produced for intercepted
// AI SDK operations.
const InspectionKindAIOp = "ai_op"

// UsageRecord captures the usage telemetry recovered from one intercepted
// SDK call.
type UsageRecord struct {
	// Provider is the provider label from the catalog hook, falling back
	// to the hook's container name when unset.
	Provider string

	// Model is the model identifier extracted from the call result, or
	// "unknown" when extraction missed.
	Model string

	// InputTokens and OutputTokens are the token counts recovered from the
	// result's usage block. Either may be zero when extraction was partial.
	InputTokens  int64
	OutputTokens int64

	// Route is the opaque session context the host's context provider
	// reported as active for this call. It is passed through untouched.
	Route any
}

// InspectionRecord captures per-call handler diagnostics.
type InspectionRecord struct {
	// Operation names the intercepted operation, e.g. "ChatClient.Complete".
	Operation string

	// Kind classifies the record; always InspectionKindAIOp for records
	// produced by this package.
	Kind string

	// DurationMs is the time the handler itself spent processing the call,
	// in milliseconds. The intercepted call's own latency is not visible to
	// the handler and is not included.
	DurationMs float64

	// AttackDetected and Blocked are always false: the agent observes,
	// it never judges or interferes.
	AttackDetected bool
	Blocked        bool

	// HasContext reports whether an active session context was present.
	// Records are only emitted when it is true.
	HasContext bool
}

// Sink receives the records the agent produces. Implementations must be
// safe for concurrent use; the agent may handle calls from many goroutines.
type Sink interface {
	RecordUsage(record UsageRecord)
	RecordInspection(record InspectionRecord)
}

// ContextProvider reports the host's active session context, if any.
// When no context is active the agent produces no records for the call.
type ContextProvider interface {
	Active() (any, bool)
}

// Callback is invoked by an interceptor after an instrumented member
// returns. args are the call arguments, receiver the bound instance (nil
// for static members), and result the member's return value (nil for void
// members or when interception could not capture it).
type Callback func(args []any, member *locator.MemberHandle, receiver any, result any)

// Interceptor installs a callback on a located member. How interception
// happens is the host's concern; the agent only supplies the handle and
// the callback.
type Interceptor interface {
	Attach(member *locator.MemberHandle, callback Callback) error
}

// StaticContext is a ContextProvider that always reports the same context.
// Useful for hosts whose whole process serves a single session.
type StaticContext struct {
	Route any
}

// Active implements ContextProvider.
func (s StaticContext) Active() (any, bool) {
	return s.Route, true
}
