package normalize

import (
	"encoding/json"
	"reflect"
	"strings"
)

// asyncMarkers identify single-value asynchronous containers by type name.
var asyncMarkers = []string{"Task", "Future", "Promise"}

// streamMarkers identify lazily enumerable sequences by type name.
var streamMarkers = []string{"Stream", "Iterator", "Pager", "Enumerable"}

// wrapperMarkers identify vendor single-value response wrappers by type name.
var wrapperMarkers = []string{"Response", "ClientResult"}

// valueMemberNames are the member names wrappers conventionally hold their
// payload under, in probe order.
var valueMemberNames = []string{"Value", "Result", "Get"}

// Normalize unwraps one layer of asynchronous, streaming, or vendor wrapper
// from a call result. Values matching no known wrapper shape are returned
// unchanged, and any failure during unwrapping surfaces the original value.
func Normalize(result any) (out any) {
	out = result
	if result == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			out = result
		}
	}()

	rv := reflect.ValueOf(result)
	name := typeName(rv)

	switch {
	case matchesAny(name, asyncMarkers):
		if v, ok := valueMember(rv); ok {
			return v
		}
	case matchesAny(name, streamMarkers):
		if v, ok := drainSequence(result); ok {
			return v
		}
	case matchesAny(name, wrapperMarkers):
		if v, ok := valueMember(rv); ok {
			return v
		}
	}

	return result
}

// typeName returns the short type name of a value, looking through pointers.
func typeName(rv reflect.Value) string {
	t := rv.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func matchesAny(name string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// valueMember reads a wrapper's value-holding member: a nullary accessor
// named Value, Result, or Get, or an exported field named Value or Result.
func valueMember(rv reflect.Value) (any, bool) {
	// Go through a pointer so pointer-receiver accessors are visible.
	v := rv
	if v.Kind() != reflect.Pointer {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}

	for _, name := range valueMemberNames {
		m := v.MethodByName(name)
		if m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
			return m.Call(nil)[0].Interface(), true
		}
	}

	elem := v.Elem()
	if elem.Kind() == reflect.Struct {
		for _, name := range valueMemberNames[:2] {
			f := elem.FieldByName(name)
			if f.IsValid() && f.CanInterface() {
				return f.Interface(), true
			}
		}
	}

	return nil, false
}

// drainSequence materializes a streaming sequence eagerly via a JSON round
// trip into a generic ordered slice. The round trip works for any enumerable
// shape without per-library unwrap code; when the sequence does not
// serialize to an array the caller keeps the original wrapper.
func drainSequence(seq any) (any, bool) {
	data, err := json.Marshal(seq)
	if err != nil {
		return nil, false
	}

	var elements []any
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, false
	}

	return elements, true
}
