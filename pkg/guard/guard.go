package guard

import (
	"runtime"
	"strings"
)

// agentModulePrefix identifies this module's own frames when scanning the
// stack for the external caller.
const agentModulePrefix = "mercator-hq/argus/"

// maxFrames bounds the stack walk; callers deeper than this are treated as
// ordinary application code.
const maxFrames = 64

// unsafeCallers lists import-path fragments of toolchains known to rewrite
// or wrap already-hooked methods.
var unsafeCallers = []string{
	// runtime-generated proxy and mock stubs
	"github.com/golang/mock",
	"go.uber.org/mock",
	"github.com/stretchr/testify/mock",
	// runtime patchers
	"github.com/agiledragon/gomonkey",
	"bou.ke/monkey",
	// APM and tracing agents
	"github.com/DataDog/dd-trace-go",
	"gopkg.in/DataDog/dd-trace-go",
	"go.elastic.co/apm",
	"github.com/newrelic/go-agent",
	// script engines and dynamic compilation
	"github.com/traefik/yaegi",
	"github.com/dop251/goja",
	"github.com/d5/tengo",
}

// ShouldSkip reports whether the currently executing caller belongs to a
// known-unsafe originator and instrumentation must be suppressed. A stack
// that cannot be inspected reports false.
func ShouldSkip() (skip bool) {
	defer func() {
		if r := recover(); r != nil {
			skip = false
		}
	}()

	// Start two frames up: this function and its immediate caller are
	// always the agent's own code.
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return false
	}

	frames := runtime.CallersFrames(pcs[:n])
	functions := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		functions = append(functions, frame.Function)
		if !more {
			break
		}
	}

	return skipForCallers(functions)
}

// skipForCallers applies the denylist to a captured stack. The first frame
// outside the agent's own module (and outside the runtime) is the caller of
// record; only that frame is judged.
func skipForCallers(functions []string) bool {
	for _, fn := range functions {
		if fn == "" ||
			strings.HasPrefix(fn, agentModulePrefix) ||
			strings.HasPrefix(fn, "runtime.") ||
			strings.HasPrefix(fn, "testing.") {
			continue
		}

		for _, marker := range unsafeCallers {
			if strings.Contains(fn, marker) {
				return true
			}
		}
		return false
	}

	return false
}
