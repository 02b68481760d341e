package instrument

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/argus/pkg/catalog"
	"mercator-hq/argus/pkg/extract"
	"mercator-hq/argus/pkg/guard"
	"mercator-hq/argus/pkg/locator"
	"mercator-hq/argus/pkg/normalize"
	"mercator-hq/argus/pkg/shape"
	"mercator-hq/argus/pkg/telemetry/metrics"
	"mercator-hq/argus/pkg/telemetry/tracing"
)

// Agent orchestrates interception: it resolves catalog hooks through the
// locator, attaches callbacks through an interceptor, and handles each
// intercepted call.
type Agent struct {
	locator  *locator.Locator
	sink     Sink
	contexts ContextProvider

	logger          *slog.Logger
	collector       *metrics.Collector
	tracer          *tracing.Tracer
	shouldSkip      func() bool
	enabled         bool
	defaultProvider string
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the agent's logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMetrics sets the agent's metrics collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(a *Agent) {
		a.collector = collector
	}
}

// WithTracer sets the agent's tracer. When set and enabled, the agent
// records one span per handled call.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(a *Agent) {
		a.tracer = tracer
	}
}

// WithGuard replaces the caller-context filter. Used by tests; production
// code keeps the default stack-walking guard.
func WithGuard(shouldSkip func() bool) Option {
	return func(a *Agent) {
		a.shouldSkip = shouldSkip
	}
}

// WithEnabled toggles interception. A disabled agent still resolves hooks
// during Install, so hosts can verify their catalogs, but attaches nothing.
func WithEnabled(enabled bool) Option {
	return func(a *Agent) {
		a.enabled = enabled
	}
}

// WithDefaultProvider sets the provider recorded when a hook carries
// neither a provider nor a container name. Defaults to "unknown".
func WithDefaultProvider(name string) Option {
	return func(a *Agent) {
		if name != "" {
			a.defaultProvider = name
		}
	}
}

// New creates an Agent. sink and contexts must be non-nil; the locator may
// be shared with other agents.
func New(loc *locator.Locator, sink Sink, contexts ContextProvider, opts ...Option) *Agent {
	a := &Agent{
		locator:         loc,
		sink:            sink,
		contexts:        contexts,
		logger:          slog.Default().With("component", "instrument"),
		shouldSkip:      guard.ShouldSkip,
		enabled:         true,
		defaultProvider: "unknown",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Install resolves each hook through the locator and, when the agent is
// enabled, attaches an interception callback to every member it can
// resolve. Unresolvable hooks are logged and skipped; attach failures
// likewise. A disabled agent resolves without attaching so hosts can
// verify their catalogs. Returns the number of hooks resolved (and, when
// enabled, attached).
func (a *Agent) Install(hooks []catalog.Hook, interceptor Interceptor) int {
	installed := 0

	for _, hook := range hooks {
		handle, ok := a.locator.Locate(hook.Container, hook.Type, hook.Member, hook.Signature)
		if !ok {
			a.logger.Warn("hook not resolved",
				"container", hook.Container,
				"type", hook.Type,
				"member", hook.Member,
			)
			continue
		}

		if !a.enabled {
			a.logger.Debug("interception disabled, hook not attached",
				"operation", hook.OperationName(),
			)
			installed++
			continue
		}

		if err := interceptor.Attach(handle, a.callbackFor(hook)); err != nil {
			a.logger.Warn("hook attach failed",
				"operation", hook.OperationName(),
				"error", err,
			)
			continue
		}

		a.logger.Debug("hook installed", "operation", hook.OperationName())
		installed++
	}

	a.logger.Info("hooks installed",
		"installed", installed,
		"total", len(hooks),
		"enabled", a.enabled,
	)
	return installed
}

// callbackFor binds a hook to the call handler.
func (a *Agent) callbackFor(hook catalog.Hook) Callback {
	return func(args []any, member *locator.MemberHandle, receiver any, result any) {
		a.HandleCall(hook, args, member, receiver, result)
	}
}

// HandleCall processes one intercepted call. It never panics: any failure
// inside the handler is swallowed after a single diagnostic log line, and
// the intercepted call proceeds unharmed.
func (a *Agent) HandleCall(hook catalog.Hook, args []any, member *locator.MemberHandle, receiver any, result any) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("interception handler panicked",
				"operation", hook.OperationName(),
				"panic", r,
			)
		}
	}()

	start := time.Now()

	if a.shouldSkip() {
		a.collector.RecordSkip(metrics.SkipUnsafeCaller)
		return
	}

	route, ok := a.contexts.Active()
	if !ok {
		a.collector.RecordSkip(metrics.SkipNoContext)
		return
	}

	if result == nil {
		a.collector.RecordSkip(metrics.SkipNoResult)
		return
	}

	normalized := normalize.Normalize(result)
	fields := shape.FieldMap(normalized)

	model, found := extract.Model(fields)
	if !found {
		a.collector.RecordExtractionMiss(metrics.MissModel)
		a.logger.Debug("model not found in result",
			"operation", hook.OperationName(),
			"fields", len(fields),
		)
	}

	usage := extract.Tokens(fields)
	if !usage.Complete {
		a.collector.RecordExtractionMiss(metrics.MissTokens)
	}

	provider := hook.Provider
	if provider == "" {
		provider = hook.Container
	}
	if provider == "" {
		provider = a.defaultProvider
	}

	a.sink.RecordUsage(UsageRecord{
		Provider:     provider,
		Model:        model,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Route:        route,
	})

	elapsed := time.Since(start)

	a.sink.RecordInspection(InspectionRecord{
		Operation:  hook.OperationName(),
		Kind:       InspectionKindAIOp,
		DurationMs: float64(elapsed.Microseconds()) / 1000.0,
		HasContext: true,
	})

	a.collector.RecordInterception(provider, model, usage.Complete, elapsed, usage.InputTokens, usage.OutputTokens)
	a.recordSpan(hook, provider, model, usage, start)
}

// recordSpan emits one span per handled call when tracing is enabled.
func (a *Agent) recordSpan(hook catalog.Hook, provider, model string, usage extract.TokenUsage, start time.Time) {
	if a.tracer == nil || !a.tracer.Enabled() {
		return
	}

	_, span := a.tracer.Start(context.Background(), InspectionKindAIOp,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.String("ai.operation", hook.OperationName()),
			attribute.String("ai.provider", provider),
			attribute.String("ai.model", model),
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Bool("ai.tokens.complete", usage.Complete),
		),
	)
	span.End()
}
