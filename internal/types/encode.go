package types

import "encoding/json"

// EncodeOperand converts an operand tree to its generic form, the inverse of
// ParseOperand. Literals encode to their bare value.
func EncodeOperand(op Operand) any {
	switch n := op.(type) {
	case nil:
		return nil
	case Literal:
		// A literal object with its own "tag" member would decode as a node.
		if obj, ok := n.Value.(map[string]any); ok {
			if _, tagged := obj["tag"]; tagged {
				return map[string]any{"tag": string(TagConstant), "value": n.Value}
			}
		}
		return n.Value
	case *Comparator:
		m := map[string]any{"tag": string(n.Tag)}
		putOperand(m, "operand", n.Operand)
		putOperand(m, "test", n.Test)
		if n.Tag == TagIsPrecisionNumber || n.DecimalPlaces != 0 {
			m["decimalPlaces"] = n.DecimalPlaces
		}
		putString(m, "pattern", n.Pattern)
		putString(m, "flags", n.Flags)
		return m
	case *Logical:
		m := map[string]any{"tag": string(n.Tag)}
		putOperands(m, "operands", n.Operands)
		if n.ShortCircuit {
			m["shortCircuit"] = true
		}
		return m
	case *Operator:
		m := map[string]any{"tag": string(n.Tag)}
		putOperand(m, "operand", n.Operand)
		putOperands(m, "operands", n.Operands)
		if n.DecimalPlaces != nil {
			m["decimalPlaces"] = *n.DecimalPlaces
		}
		putString(m, "locale", n.Locale)
		putString(m, "currency", n.Currency)
		putString(m, "layout", n.Layout)
		putString(m, "separator", n.Separator)
		putString(m, "pattern", n.Pattern)
		putString(m, "replacement", n.Replacement)
		putString(m, "template", n.Template)
		return m
	case *Injector:
		m := map[string]any{"tag": string(n.Tag)}
		if n.Tag == TagConstant {
			m["value"] = n.Value
		}
		putString(m, "name", n.Name)
		putString(m, "path", n.Path)
		if n.OnMissing != "" && n.OnMissing != OnMissingFail {
			m["onMissing"] = string(n.OnMissing)
		}
		return m
	default:
		return nil
	}
}

// MarshalOperand encodes an operand tree as JSON.
func MarshalOperand(op Operand) ([]byte, error) {
	return json.Marshal(EncodeOperand(op))
}

func putOperand(m map[string]any, key string, op Operand) {
	if op != nil {
		m[key] = EncodeOperand(op)
	}
}

func putOperands(m map[string]any, key string, ops []Operand) {
	if len(ops) == 0 {
		return
	}
	out := make([]any, len(ops))
	for i, op := range ops {
		out[i] = EncodeOperand(op)
	}
	m[key] = out
}

func putString(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}
