package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mercator-hq/argus/pkg/shape"
)

// ModelUnknown is the sentinel reported when no model identifier can be
// located in a call result.
const ModelUnknown = "unknown"

// TokenUsage holds the token counts recovered from a call result. Complete
// is true only when both directions were positively located in the same
// branch; a one-sided find keeps its value but reports incomplete.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	Complete     bool
}

// fieldPair names the input/output token members of one provider family.
type fieldPair struct {
	input  string
	output string
}

// usagePairs are tried in order against the "Usage" member.
var usagePairs = []fieldPair{
	{input: "InputTokenCount", output: "OutputTokenCount"},
	{input: "PromptTokens", output: "CompletionTokens"},
}

// metadataPair applies to the "Metadata" member when "Usage" is absent.
var metadataPair = fieldPair{input: "PromptTokenCount", output: "CandidatesTokenCount"}

// Model recovers the model identifier from a shape map. It checks a direct
// "Model" member first, then a "ModelId" nested inside a "Value" wrapper.
// When nothing is found it returns the ModelUnknown sentinel with found set
// to false so the caller can log the miss without throwing.
func Model(fields map[string]any) (model string, found bool) {
	defer func() {
		if r := recover(); r != nil {
			model, found = ModelUnknown, false
		}
	}()

	if v, ok := lookup(fields, "Model"); ok {
		if s, ok := asString(v); ok {
			return s, true
		}
	}

	// Some SDKs nest the identifier one level deeper inside their value
	// wrapper.
	if v, ok := lookup(fields, "Value"); ok {
		inner := shape.FieldMap(v)
		if mv, ok := lookup(inner, "ModelId"); ok {
			if s, ok := asString(mv); ok {
				return s, true
			}
		}
	}

	return ModelUnknown, false
}

// Tokens recovers input/output token counts from a shape map. The "Usage"
// member is consulted first with the OpenAI-family field pairs; "Metadata"
// with the Gemini pair is the fallback when "Usage" is absent. Internal
// failures yield a zeroed, incomplete result.
func Tokens(fields map[string]any) (usage TokenUsage) {
	defer func() {
		if r := recover(); r != nil {
			usage = TokenUsage{}
		}
	}()

	if v, ok := lookup(fields, "Usage"); ok {
		return tokensFrom(shape.FieldMap(v), usagePairs)
	}

	if v, ok := lookup(fields, "Metadata"); ok {
		return tokensFrom(shape.FieldMap(v), []fieldPair{metadataPair})
	}

	return TokenUsage{}
}

// tokensFrom applies the ordered field pairs to one branch. Each direction
// resolves independently through the pairs, so a payload mixing naming
// families still yields both counts. Complete requires both directions.
func tokensFrom(fields map[string]any, pairs []fieldPair) TokenUsage {
	var usage TokenUsage
	var inOK, outOK bool

	for _, pair := range pairs {
		if !inOK {
			if in, ok := lookupInt(fields, pair.input); ok {
				usage.InputTokens, inOK = in, true
			}
		}
		if !outOK {
			if out, ok := lookupInt(fields, pair.output); ok {
				usage.OutputTokens, outOK = out, true
			}
		}
	}

	usage.Complete = inOK && outOK
	return usage
}

// lookup finds a member by its conventional name, tolerating the snake_case
// spelling that JSON-decoded shape maps carry, and finally a case-insensitive
// scan.
func lookup(fields map[string]any, name string) (any, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	if v, ok := fields[snakeCase(name)]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// lookupInt finds a member and coerces it to a 64-bit integer.
func lookupInt(fields map[string]any, name string) (int64, bool) {
	v, ok := lookup(fields, name)
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

// asString coerces a member value to a string.
func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case []byte:
		return string(s), len(s) > 0
	case fmt.Stringer:
		str := s.String()
		return str, str != ""
	default:
		return "", false
	}
}

// asInt64 coerces a numeric member value to int64. JSON-decoded maps carry
// float64 and json.Number; reflected SDK structs carry native integer types.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// snakeCase converts a Go member name to its snake_case JSON spelling, e.g.
// "InputTokenCount" becomes "input_token_count".
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
