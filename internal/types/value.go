package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value is any datum flowing through an operand tree.
//
// Accepted dynamic types: nil, string, bool, json.Number (canonical numeric
// form), float64, int, int64, []any, map[string]any and time.Time. Values have
// no identity beyond structural equality.
type Value = any

// LocalValues maps field identifiers to their current values.
// Built once per evaluation by the caller and only ever read by the engine.
type LocalValues map[string]Value

// Get returns the value bound to name and whether it was present.
func (lv LocalValues) Get(name string) (Value, bool) {
	if lv == nil {
		return nil, false
	}
	v, ok := lv[name]
	return v, ok
}

// Number converts a float64 to the canonical json.Number form.
func Number(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// FormatValue renders a value for inclusion in failure messages.
// Strings and numbers print bare; nil prints as null; composites print as JSON.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// Normalize converts values produced by generic decoders into the canonical
// forms the engine expects. YAML yields int/uint/float types, JSON without
// UseNumber yields float64, and nested maps may be keyed by any.
func Normalize(v Value) Value {
	switch val := v.(type) {
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return json.Number(strconv.Itoa(val))
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(val), 10))
	case uint64:
		return json.Number(strconv.FormatUint(val, 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(val), 10))
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Normalize(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprintf("%v", k)] = Normalize(elem)
		}
		return out
	default:
		return val
	}
}

// Plain converts canonical values back to the subset understood by
// encoding/json-agnostic consumers (structpb, templates): json.Number becomes
// float64 and time.Time becomes an RFC 3339 string.
func Plain(v Value) Value {
	switch val := v.(type) {
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Plain(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Plain(elem)
		}
		return out
	default:
		return val
	}
}
