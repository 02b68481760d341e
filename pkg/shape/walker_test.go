package shape

import (
	"reflect"
	"testing"
)

type usagePayload struct {
	Model string
	Usage map[string]any

	internal string
}

type wrappedPayload struct {
	Status string
	value  any
}

type collidingPayload struct {
	Value string
	value any
}

func TestFieldMap_Nil(t *testing.T) {
	fields := FieldMap(nil)
	if len(fields) != 0 {
		t.Fatalf("expected empty map for nil input, got %v", fields)
	}
}

func TestFieldMap_MapFastPath(t *testing.T) {
	in := map[string]any{
		"Model": "gpt-4o",
		"Usage": map[string]any{"InputTokenCount": 10},
	}

	fields := FieldMap(in)

	if !reflect.DeepEqual(fields, in) {
		t.Fatalf("expected shallow copy %v, got %v", in, fields)
	}

	// The copy must be independent of the input map.
	fields["Model"] = "changed"
	if in["Model"] != "gpt-4o" {
		t.Fatal("field map mutation leaked into the input map")
	}
}

func TestFieldMap_TypedMap(t *testing.T) {
	fields := FieldMap(map[string]int{"PromptTokens": 5, "CompletionTokens": 7})

	if fields["PromptTokens"] != 5 || fields["CompletionTokens"] != 7 {
		t.Fatalf("unexpected field map: %v", fields)
	}
}

func TestFieldMap_StructFields(t *testing.T) {
	payload := usagePayload{
		Model:    "claude-3-opus",
		Usage:    map[string]any{"InputTokenCount": 1},
		internal: "hidden",
	}

	tests := []struct {
		name string
		in   any
	}{
		{name: "value", in: payload},
		{name: "pointer", in: &payload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := FieldMap(tt.in)

			if fields["Model"] != "claude-3-opus" {
				t.Errorf("Model = %v, want claude-3-opus", fields["Model"])
			}
			if _, ok := fields["Usage"]; !ok {
				t.Error("Usage field missing from map")
			}
			if _, ok := fields["internal"]; ok {
				t.Error("unexported field leaked into map")
			}
		})
	}
}

func TestFieldMap_ProbesReducedVisibilityValue(t *testing.T) {
	fields := FieldMap(wrappedPayload{Status: "ok", value: map[string]any{"ModelId": "gemini-2.5-flash"}})

	inner, ok := fields["Value"].(map[string]any)
	if !ok {
		t.Fatalf("expected probed Value member, got %v", fields["Value"])
	}
	if inner["ModelId"] != "gemini-2.5-flash" {
		t.Fatalf("unexpected probed payload: %v", inner)
	}
}

func TestFieldMap_ProbedValueOverwritesPublicMember(t *testing.T) {
	fields := FieldMap(collidingPayload{Value: "public", value: "internal"})

	if fields["Value"] != "internal" {
		t.Fatalf("Value = %v, want the reduced-visibility member to win", fields["Value"])
	}
}

func TestFieldMap_NonStructScalar(t *testing.T) {
	if fields := FieldMap("hello"); len(fields) != 0 {
		t.Fatalf("expected empty map for scalar input, got %v", fields)
	}
	if fields := FieldMap(42); len(fields) != 0 {
		t.Fatalf("expected empty map for numeric input, got %v", fields)
	}
}

func TestFieldMap_NilPointer(t *testing.T) {
	var p *usagePayload
	if fields := FieldMap(p); len(fields) != 0 {
		t.Fatalf("expected empty map for nil pointer, got %v", fields)
	}
}
