package locator

import (
	"fmt"
	"reflect"
	"sync"
	"unicode"
)

// SymbolTable is an in-process Container assembled by the host. SDK shims
// register their hookable types and callables under a container name; the
// table then stands in for an already-loaded unit during resolution.
type SymbolTable struct {
	name string

	mu    sync.RWMutex
	types []*TypeInfo
	index map[string]*TypeInfo
}

// NewSymbolTable creates an empty symbol table with the given container name.
func NewSymbolTable(name string) *SymbolTable {
	return &SymbolTable{
		name:  name,
		index: make(map[string]*TypeInfo),
	}
}

// Name returns the container name.
func (s *SymbolTable) Name() string { return s.name }

// AddFunc registers fn as a member of the named type, creating the type on
// first use. Overloads accumulate in registration order. Types whose short
// name starts with an upper-case letter are part of the exported surface,
// mirroring Go visibility.
func (s *SymbolTable) AddFunc(typeName, memberName string, fn any) error {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return fmt.Errorf("member %s.%s: fn must be a func, got %T", typeName, memberName, fn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.index[typeName]
	if !ok {
		info = &TypeInfo{
			Name:     typeName,
			FullName: s.name + "." + typeName,
			Exported: isExportedName(typeName),
			Members:  make(map[string][]Member),
		}
		s.index[typeName] = info
		s.types = append(s.types, info)
	}

	info.Members[memberName] = append(info.Members[memberName], Member{
		Name:   memberName,
		Func:   rv,
		Params: paramSignatures(rv.Type()),
	})
	return nil
}

// AddType registers a fully built type descriptor, replacing any previous
// descriptor with the same short name.
func (s *SymbolTable) AddType(info *TypeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.index[info.Name]; ok {
		for i, t := range s.types {
			if t == prev {
				s.types[i] = info
				break
			}
		}
		s.index[info.Name] = info
		return
	}

	s.index[info.Name] = info
	s.types = append(s.types, info)
}

// ExportedTypes returns the table's public type surface.
func (s *SymbolTable) ExportedTypes() []*TypeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TypeInfo, 0, len(s.types))
	for _, t := range s.types {
		if t.Exported {
			out = append(out, t)
		}
	}
	return out
}

// AllTypes returns every registered type in registration order.
func (s *SymbolTable) AllTypes() []*TypeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TypeInfo, len(s.types))
	copy(out, s.types)
	return out
}

// isExportedName reports whether a short type name denotes an exported type.
func isExportedName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
