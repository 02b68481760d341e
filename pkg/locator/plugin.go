package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
)

// pluginExt is the platform's native container extension. Go plugins are
// shared objects on every platform that supports them.
const pluginExt = ".so"

// exportsSymbol maps type names to prototype values on the plugin's public
// surface.
const exportsSymbol = "Exports"

// internalsSymbol optionally contributes types outside the public surface.
const internalsSymbol = "Internals"

// loadPluginContainer loads a container from a shared object named
// <name>.so in the running executable's directory. The plugin must export
// an Exports variable of type map[string]any mapping type names to
// prototype values; member sets are derived from the prototypes' methods.
func loadPluginContainer(name string) (Container, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot determine executable path: %w", err)
	}

	path := filepath.Join(filepath.Dir(exe), name+pluginExt)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("container %q not present at %s: %w", name, path, err)
	}

	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load container %q: %w", name, err)
	}

	table := NewSymbolTable(name)

	exports, err := lookupSymbolMap(p, exportsSymbol)
	if err != nil {
		return nil, fmt.Errorf("container %q: %w", name, err)
	}
	for typeName, proto := range exports {
		table.AddType(TypeFromPrototype(typeName, proto, true))
	}

	// Internals are optional; absence is not an error.
	if internals, err := lookupSymbolMap(p, internalsSymbol); err == nil {
		for typeName, proto := range internals {
			table.AddType(TypeFromPrototype(typeName, proto, false))
		}
	}

	return table, nil
}

// lookupSymbolMap resolves a plugin variable holding a type map. Plugin
// lookup returns a pointer to the variable.
func lookupSymbolMap(p *plugin.Plugin, symbol string) (map[string]any, error) {
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s symbol: %w", symbol, err)
	}

	switch m := sym.(type) {
	case *map[string]any:
		return *m, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("%s symbol has type %T, want map[string]any", symbol, sym)
	}
}
