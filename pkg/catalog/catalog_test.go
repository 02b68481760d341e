package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const sampleCatalog = `
hooks:
  - provider: openai
    container: acme.ai.client
    type: ChatClient
    member: Complete
    signature: [string, int]
  - provider: gemini
    container: acme.ai.gemini
    type: GenerativeModel
    member: GenerateContent
    operation: gemini.generate
`

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), sampleCatalog)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(c.Hooks) != 2 {
		t.Fatalf("loaded %d hooks, want 2", len(c.Hooks))
	}

	first := c.Hooks[0]
	if first.Provider != "openai" || first.Container != "acme.ai.client" {
		t.Errorf("unexpected first hook: %+v", first)
	}
	if got := first.OperationName(); got != "ChatClient.Complete" {
		t.Errorf("OperationName() = %q", got)
	}
	if len(first.Signature) != 2 || first.Signature[0] != "string" {
		t.Errorf("unexpected signature: %v", first.Signature)
	}

	if got := c.Hooks[1].OperationName(); got != "gemini.generate" {
		t.Errorf("operation override not honored: %q", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing container", content: "hooks:\n  - type: T\n    member: M\n"},
		{name: "missing type", content: "hooks:\n  - container: c\n    member: M\n"},
		{name: "missing member", content: "hooks:\n  - container: c\n    type: T\n"},
		{name: "traversal in container", content: "hooks:\n  - container: ../evil\n    type: T\n    member: M\n"},
		{
			name: "duplicate hook",
			content: "hooks:\n" +
				"  - {container: c, type: T, member: M}\n" +
				"  - {container: c, type: T, member: M}\n",
		},
		{name: "malformed yaml", content: "hooks: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.content)); err == nil {
				t.Fatal("Parse accepted an invalid catalog")
			}
		})
	}
}

func TestParse_EmptyCatalog(t *testing.T) {
	c, err := Parse([]byte("hooks: []\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.Hooks) != 0 {
		t.Fatalf("expected empty catalog, got %d hooks", len(c.Hooks))
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	var reloads atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// Give the watcher time to install its directory watch.
	time.Sleep(200 * time.Millisecond)

	writeCatalog(t, dir, sampleCatalog+"\n# touched\n")

	deadline := time.After(3 * time.Second)
	for reloads.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never triggered a reload")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	if err := <-watchDone; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestWatcher_StopAfterContextCancel(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(ctx, func() error { return nil })
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := <-watchDone; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}

	// The event loop already exited; Stop must still release the fsnotify
	// watcher and stay idempotent.
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop after context cancel: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if err := w.watcher.Add(dir); err == nil {
		t.Fatal("fsnotify watcher still open after Stop")
	}
}

func TestWatcher_ConcurrentStop(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(context.Background(), func() error { return nil })
	}()

	time.Sleep(200 * time.Millisecond)

	stopErrs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { stopErrs <- w.Stop() }()
	}
	for i := 0; i < 2; i++ {
		if err := <-stopErrs; err != nil {
			t.Fatalf("concurrent Stop: %v", err)
		}
	}

	if err := <-watchDone; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	var reloads atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	time.Sleep(200 * time.Millisecond)

	other := filepath.Join(dir, "notes.yaml")
	if err := os.WriteFile(other, []byte("unrelated"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Fatalf("watcher reloaded %d times for an unrelated file", got)
	}
}
