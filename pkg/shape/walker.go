package shape

import (
	"reflect"
	"unsafe"
)

// FieldMap converts a value into a flat mapping from member name to member
// value. It returns an empty map for nil input. Individual member reads that
// fail are skipped rather than aborting the walk.
func FieldMap(obj any) map[string]any {
	fields := make(map[string]any)
	if obj == nil {
		return fields
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return fields
		}
		rv = rv.Elem()
	}

	// Fast path: the value already is a string-keyed map.
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		copyMap(fields, rv)
		return fields
	}

	if rv.Kind() != reflect.Struct {
		return fields
	}

	// Reduced-visibility reads below need an addressable value.
	if !rv.CanAddr() {
		copied := reflect.New(rv.Type()).Elem()
		copied.Set(rv)
		rv = copied
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		readInto(fields, f.Name, rv.Field(i))
	}

	probeValueMember(fields, rv)

	return fields
}

// copyMap shallow-copies a string-keyed map into fields.
func copyMap(fields map[string]any, rv reflect.Value) {
	iter := rv.MapRange()
	for iter.Next() {
		readInto(fields, iter.Key().String(), iter.Value())
	}
}

// readInto records one member value, swallowing panics from unreadable
// members. A member that cannot be read is simply absent from the map.
func readInto(fields map[string]any, name string, v reflect.Value) {
	defer func() {
		_ = recover()
	}()
	fields[name] = v.Interface()
}

// probeValueMember records the conventionally named payload member even when
// the struct keeps it unexported (the Go spelling is a lowercase "value"
// field). When found it is recorded under the "Value" key, overwriting any
// exported member of the same name.
func probeValueMember(fields map[string]any, rv reflect.Value) {
	defer func() {
		_ = recover()
	}()

	f := rv.FieldByName("value")
	if !f.IsValid() || !f.CanAddr() {
		return
	}
	fields["Value"] = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem().Interface()
}
