package locator

import (
	"fmt"
	"reflect"
)

// Container is a loadable unit of code: a named collection of types whose
// members can be located and invoked at run time.
type Container interface {
	// Name returns the container's declared name.
	Name() string

	// ExportedTypes returns the container's public type surface.
	ExportedTypes() []*TypeInfo

	// AllTypes returns every type in the container, including internal
	// ones. ExportedTypes is a subset.
	AllTypes() []*TypeInfo
}

// TypeInfo describes one type inside a container. Members maps a member name
// to its overload set: types built from Go prototypes carry one entry per
// name, host-assembled symbol tables may carry several.
type TypeInfo struct {
	// Name is the type's short name.
	Name string

	// FullName is the package-qualified name.
	FullName string

	// Exported reports whether the type belongs to the public surface.
	Exported bool

	// Members maps member names to overload sets.
	Members map[string][]Member
}

// Member is one callable member of a type.
type Member struct {
	// Name is the member name.
	Name string

	// Func is the callable value.
	Func reflect.Value

	// Params holds the parameter-type signatures, excluding any receiver.
	Params []string
}

// MemberHandle is an opaque, invocable reference to a located member.
type MemberHandle struct {
	// Container is the name of the container the member was found in.
	Container string

	// Type is the resolved type's full name.
	Type string

	// Name is the member name.
	Name string

	fn     reflect.Value
	params []string
}

// ParamTypes returns the member's parameter-type signatures.
func (h *MemberHandle) ParamTypes() []string {
	out := make([]string, len(h.params))
	copy(out, h.params)
	return out
}

// Invoke calls the located member with the given arguments.
func (h *MemberHandle) Invoke(args ...any) ([]any, error) {
	ft := h.fn.Type()
	if !ft.IsVariadic() && len(args) != ft.NumIn() {
		return nil, fmt.Errorf("member %s.%s expects %d arguments, got %d",
			h.Type, h.Name, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(paramType(ft, i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	outs := h.fn.Call(in)
	results := make([]any, len(outs))
	for i, o := range outs {
		results[i] = o.Interface()
	}
	return results, nil
}

// paramType returns the static type of parameter i, resolving the element
// type for variadic tails.
func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}

// paramSignatures derives the signature strings for a callable type.
func paramSignatures(ft reflect.Type) []string {
	sigs := make([]string, 0, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		sigs = append(sigs, ft.In(i).String())
	}
	return sigs
}

// TypeFromPrototype builds a TypeInfo from a prototype value's method set.
// Methods are bound to the prototype, so their signatures exclude the
// receiver. Both value- and pointer-receiver methods are included.
func TypeFromPrototype(name string, proto any, exported bool) *TypeInfo {
	rv := reflect.ValueOf(proto)
	if rv.Kind() != reflect.Pointer {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		rv = ptr
	}

	info := &TypeInfo{
		Name:     name,
		FullName: rv.Type().Elem().String(),
		Exported: exported,
		Members:  make(map[string][]Member),
	}

	for i := 0; i < rv.NumMethod(); i++ {
		m := rv.Type().Method(i)
		bound := rv.Method(i)
		info.Members[m.Name] = append(info.Members[m.Name], Member{
			Name:   m.Name,
			Func:   bound,
			Params: paramSignatures(bound.Type()),
		})
	}

	return info
}
