package instrument

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"mercator-hq/argus/pkg/catalog"
	"mercator-hq/argus/pkg/extract"
	"mercator-hq/argus/pkg/locator"
)

type fakeSink struct {
	mu          sync.Mutex
	usage       []UsageRecord
	inspections []InspectionRecord
	panicOnUse  bool
}

func (s *fakeSink) RecordUsage(record UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOnUse {
		panic("sink exploded")
	}
	s.usage = append(s.usage, record)
}

func (s *fakeSink) RecordInspection(record InspectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspections = append(s.inspections, record)
}

func (s *fakeSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.usage), len(s.inspections)
}

type fakeInterceptor struct {
	handles   []*locator.MemberHandle
	callbacks []Callback
	attachErr error
}

func (i *fakeInterceptor) Attach(member *locator.MemberHandle, callback Callback) error {
	if i.attachErr != nil {
		return i.attachErr
	}
	i.handles = append(i.handles, member)
	i.callbacks = append(i.callbacks, callback)
	return nil
}

type fakeContext struct {
	route  any
	active bool
}

func (c *fakeContext) Active() (any, bool) {
	return c.route, c.active
}

// Result shapes mimicking intercepted SDK return values.

type tokenBlock struct {
	InputTokenCount  int64
	OutputTokenCount int64
}

type chatResult struct {
	Model string
	Usage tokenBlock
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLocator(t *testing.T) *locator.Locator {
	t.Helper()

	table := locator.NewSymbolTable("acme.ai.client")
	if err := table.AddFunc("ChatClient", "Complete", func(prompt string) *chatResult {
		return &chatResult{Model: "stub"}
	}); err != nil {
		t.Fatalf("AddFunc() error = %v", err)
	}

	loc := locator.New(testLogger())
	loc.Register(table)
	return loc
}

func chatHook() catalog.Hook {
	return catalog.Hook{
		Provider:  "mistral",
		Container: "acme.ai.client",
		Type:      "ChatClient",
		Member:    "Complete",
		Signature: []string{"string"},
	}
}

func newTestAgent(t *testing.T, sink Sink, contexts ContextProvider, opts ...Option) *Agent {
	t.Helper()

	base := []Option{
		WithLogger(testLogger()),
		WithGuard(func() bool { return false }),
	}
	return New(testLocator(t), sink, contexts, append(base, opts...)...)
}

func TestAgent_Install(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "sess-1", active: true})

	hooks := []catalog.Hook{
		chatHook(),
		{Container: "acme.ai.client", Type: "NoSuchType", Member: "Complete"},
	}

	interceptor := &fakeInterceptor{}
	if got := agent.Install(hooks, interceptor); got != 1 {
		t.Fatalf("Install() = %d, want 1", got)
	}
	if len(interceptor.callbacks) != 1 {
		t.Fatalf("callbacks attached = %d, want 1", len(interceptor.callbacks))
	}
	if interceptor.handles[0].Type != "acme.ai.client.ChatClient" {
		t.Errorf("attached handle type = %q, want full type name", interceptor.handles[0].Type)
	}
}

func TestAgent_Install_AttachError(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{active: true})

	interceptor := &fakeInterceptor{attachErr: errors.New("platform refused")}
	if got := agent.Install([]catalog.Hook{chatHook()}, interceptor); got != 0 {
		t.Fatalf("Install() = %d, want 0", got)
	}
}

func TestAgent_Install_Disabled(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{active: true}, WithEnabled(false))

	hooks := []catalog.Hook{
		chatHook(),
		{Container: "acme.ai.client", Type: "NoSuchType", Member: "Complete"},
	}

	// A disabled agent still resolves hooks so catalogs can be verified,
	// but attaches no callbacks.
	interceptor := &fakeInterceptor{}
	if got := agent.Install(hooks, interceptor); got != 1 {
		t.Fatalf("Install() = %d, want 1 resolved", got)
	}
	if len(interceptor.callbacks) != 0 {
		t.Fatalf("callbacks attached = %d, want none when disabled", len(interceptor.callbacks))
	}
}

func TestAgent_HandleCall_EmitsBothRecords(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "sess-42", active: true})

	result := &chatResult{
		Model: "mistral-large",
		Usage: tokenBlock{InputTokenCount: 15, OutputTokenCount: 30},
	}
	agent.HandleCall(chatHook(), []any{"hello"}, nil, nil, result)

	usageCount, inspCount := sink.counts()
	if usageCount != 1 || inspCount != 1 {
		t.Fatalf("records = %d usage, %d inspection; want 1 and 1", usageCount, inspCount)
	}

	usage := sink.usage[0]
	if usage.Provider != "mistral" {
		t.Errorf("Provider = %q, want mistral", usage.Provider)
	}
	if usage.Model != "mistral-large" {
		t.Errorf("Model = %q, want mistral-large", usage.Model)
	}
	if usage.InputTokens != 15 || usage.OutputTokens != 30 {
		t.Errorf("tokens = %d/%d, want 15/30", usage.InputTokens, usage.OutputTokens)
	}
	if usage.Route != "sess-42" {
		t.Errorf("Route = %v, want sess-42", usage.Route)
	}

	insp := sink.inspections[0]
	if insp.Operation != "ChatClient.Complete" {
		t.Errorf("Operation = %q, want ChatClient.Complete", insp.Operation)
	}
	if insp.Kind != InspectionKindAIOp {
		t.Errorf("Kind = %q, want %q", insp.Kind, InspectionKindAIOp)
	}
	if !insp.HasContext {
		t.Error("HasContext = false, want true")
	}
	if insp.AttackDetected || insp.Blocked {
		t.Error("AttackDetected/Blocked must always be false")
	}
	if insp.DurationMs < 0 {
		t.Errorf("DurationMs = %v, want >= 0", insp.DurationMs)
	}
}

func TestAgent_HandleCall_NoContext(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{active: false})

	agent.HandleCall(chatHook(), nil, nil, nil, &chatResult{Model: "gpt-4o"})

	if usageCount, inspCount := sink.counts(); usageCount != 0 || inspCount != 0 {
		t.Errorf("records without context = %d/%d, want none", usageCount, inspCount)
	}
}

func TestAgent_HandleCall_NilResult(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true})

	agent.HandleCall(chatHook(), nil, nil, nil, nil)

	if usageCount, inspCount := sink.counts(); usageCount != 0 || inspCount != 0 {
		t.Errorf("records for nil result = %d/%d, want none", usageCount, inspCount)
	}
}

func TestAgent_HandleCall_UnsafeCaller(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true},
		WithGuard(func() bool { return true }))

	agent.HandleCall(chatHook(), nil, nil, nil, &chatResult{Model: "gpt-4o"})

	if usageCount, inspCount := sink.counts(); usageCount != 0 || inspCount != 0 {
		t.Errorf("records for unsafe caller = %d/%d, want none", usageCount, inspCount)
	}
}

func TestAgent_HandleCall_ModelMiss(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true})

	// A result with usage but no model identifier still yields a record
	// carrying the unknown sentinel.
	result := struct {
		Usage tokenBlock
	}{Usage: tokenBlock{InputTokenCount: 7, OutputTokenCount: 9}}

	agent.HandleCall(chatHook(), nil, nil, nil, result)

	if usageCount, _ := sink.counts(); usageCount != 1 {
		t.Fatalf("usage records = %d, want 1", usageCount)
	}
	if sink.usage[0].Model != extract.ModelUnknown {
		t.Errorf("Model = %q, want %q", sink.usage[0].Model, extract.ModelUnknown)
	}
	if sink.usage[0].InputTokens != 7 || sink.usage[0].OutputTokens != 9 {
		t.Errorf("tokens = %d/%d, want 7/9",
			sink.usage[0].InputTokens, sink.usage[0].OutputTokens)
	}
}

func TestAgent_HandleCall_ProviderFallsBackToContainer(t *testing.T) {
	sink := &fakeSink{}
	agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true})

	hook := chatHook()
	hook.Provider = ""
	agent.HandleCall(hook, nil, nil, nil, &chatResult{Model: "m"})

	if usageCount, _ := sink.counts(); usageCount != 1 {
		t.Fatalf("usage records = %d, want 1", usageCount)
	}
	if sink.usage[0].Provider != "acme.ai.client" {
		t.Errorf("Provider = %q, want container name fallback", sink.usage[0].Provider)
	}
}

func TestAgent_HandleCall_DefaultProvider(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{name: "built-in default", want: "unknown"},
		{name: "configured default", opts: []Option{WithDefaultProvider("acme")}, want: "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true}, tt.opts...)

			hook := chatHook()
			hook.Provider = ""
			hook.Container = ""
			agent.HandleCall(hook, nil, nil, nil, &chatResult{Model: "m"})

			if usageCount, _ := sink.counts(); usageCount != 1 {
				t.Fatalf("usage records = %d, want 1", usageCount)
			}
			if sink.usage[0].Provider != tt.want {
				t.Errorf("Provider = %q, want %q", sink.usage[0].Provider, tt.want)
			}
		})
	}
}

func TestAgent_HandleCall_PanicIsolation(t *testing.T) {
	sink := &fakeSink{panicOnUse: true}
	agent := newTestAgent(t, sink, &fakeContext{route: "s", active: true})

	// Must not propagate the sink's panic to the caller.
	agent.HandleCall(chatHook(), nil, nil, nil, &chatResult{Model: "gpt-4o"})
}

func TestStaticContext(t *testing.T) {
	route, ok := StaticContext{Route: "tenant-7"}.Active()
	if !ok {
		t.Fatal("StaticContext.Active() ok = false, want true")
	}
	if route != "tenant-7" {
		t.Errorf("route = %v, want tenant-7", route)
	}
}
