package locator

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Locator resolves member tuples to invocable handles, loading containers on
// demand. Container and type resolution are cached process-wide; both caches
// are append-only during normal operation and reset only by ClearCache. An
// entry is inserted only after successful resolution, never partially.
type Locator struct {
	mu         sync.RWMutex
	registered map[string]Container
	containers map[string]Container
	types      map[string]*TypeInfo

	// loadContainer loads a container not found among the registered ones.
	// Defaults to plugin loading from the executable's directory.
	loadContainer func(name string) (Container, error)

	containerResolutions atomic.Int64
	typeResolutions      atomic.Int64

	logger *slog.Logger
}

// Stats reports resolution counters and cache sizes. Resolution counters
// track full (uncached) resolutions, so tests and the metrics gauges can
// observe cache behavior.
type Stats struct {
	ContainerResolutions int64
	TypeResolutions      int64
	ContainersCached     int
	TypesCached          int
}

// New creates a Locator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		registered:    make(map[string]Container),
		containers:    make(map[string]Container),
		types:         make(map[string]*TypeInfo),
		loadContainer: loadPluginContainer,
		logger:        logger.With("component", "locator"),
	}
}

// Register makes a host-assembled container available for resolution. It
// stands in for an already-loaded unit: registered containers are consulted
// before any on-disk loading.
func (l *Locator) Register(c Container) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registered[c.Name()] = c
}

// Locate resolves (container, type, member, signature) to a member handle.
// A false second return means the container, type, or member could not be
// found; that is a normal outcome, not an error. Container names that are
// empty or carry a parent-directory traversal sequence are rejected
// outright.
func (l *Locator) Locate(containerName, typeName, memberName string, paramSigs []string) (*MemberHandle, bool) {
	if containerName == "" || strings.Contains(containerName, "..") {
		return nil, false
	}

	c, ok := l.resolveContainer(containerName)
	if !ok {
		return nil, false
	}

	t, ok := l.resolveType(c, typeName)
	if !ok {
		return nil, false
	}

	m, ok := selectMember(t, memberName, paramSigs)
	if !ok {
		return nil, false
	}

	return &MemberHandle{
		Container: c.Name(),
		Type:      t.FullName,
		Name:      m.Name,
		fn:        m.Func,
		params:    m.Params,
	}, true
}

// ClearCache resets the container and type caches. Registered containers
// stay available as resolution sources; subsequent lookups re-perform full
// resolution.
func (l *Locator) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.containers = make(map[string]Container)
	l.types = make(map[string]*TypeInfo)
}

// Stats returns a snapshot of resolution counters and cache sizes.
func (l *Locator) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{
		ContainerResolutions: l.containerResolutions.Load(),
		TypeResolutions:      l.typeResolutions.Load(),
		ContainersCached:     len(l.containers),
		TypesCached:          len(l.types),
	}
}

// resolveContainer finds a container by name: cache, then registered
// containers, then on-disk loading. Nothing is cached on failure.
func (l *Locator) resolveContainer(name string) (Container, bool) {
	l.mu.RLock()
	if c, ok := l.containers[name]; ok {
		l.mu.RUnlock()
		return c, true
	}
	l.mu.RUnlock()

	l.containerResolutions.Add(1)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another goroutine may have resolved the same name meanwhile; both
	// would have computed the same value, last write wins.
	if c, ok := l.containers[name]; ok {
		return c, true
	}

	if c, ok := l.registered[name]; ok {
		l.containers[name] = c
		return c, true
	}

	c, err := l.loadContainer(name)
	if err != nil {
		l.logger.Debug("container not resolvable", "container", name, "error", err)
		return nil, false
	}

	l.containers[name] = c
	return c, true
}

// resolveType finds a type in a container by short or fully-qualified name,
// searching the exported surface first and falling back to a scan of all
// types. First match wins.
func (l *Locator) resolveType(c Container, typeName string) (*TypeInfo, bool) {
	key := c.Name() + "." + typeName

	l.mu.RLock()
	if t, ok := l.types[key]; ok {
		l.mu.RUnlock()
		return t, true
	}
	l.mu.RUnlock()

	l.typeResolutions.Add(1)

	t, ok := findType(c.ExportedTypes(), typeName)
	if !ok {
		t, ok = findType(c.AllTypes(), typeName)
	}
	if !ok {
		return nil, false
	}

	l.mu.Lock()
	l.types[key] = t
	l.mu.Unlock()
	return t, true
}

func findType(types []*TypeInfo, name string) (*TypeInfo, bool) {
	for _, t := range types {
		if t.Name == name || t.FullName == name {
			return t, true
		}
	}
	return nil, false
}

// selectMember picks from a type's overload set: the exact signature match
// when one exists, otherwise the overload with the most parameters. The
// richest overload is where wrapping overloads funnel, which keeps the hook
// on the real work when library versions shift signatures.
func selectMember(t *TypeInfo, memberName string, paramSigs []string) (Member, bool) {
	overloads := t.Members[memberName]
	if len(overloads) == 0 {
		return Member{}, false
	}

	for _, m := range overloads {
		if slices.Equal(m.Params, paramSigs) {
			return m, true
		}
	}

	best := overloads[0]
	for _, m := range overloads[1:] {
		if len(m.Params) > len(best.Params) {
			best = m
		}
	}
	return best, true
}
