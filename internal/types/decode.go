package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

/*
 * Operand decoding from the generic tree form.
 *
 * JSON and YAML documents decode to map[string]any / []any trees; ParseOperand
 * converts such a tree into operand nodes. An object carrying a string "tag"
 * member is a node; everything else (including objects without "tag") is a
 * literal value.
 *
 * Node family comes from the built-in tag vocabulary. Unknown tags are kept,
 * not rejected: an optional "kind" member selects the family, defaulting to
 * comparator, so that the evaluator can surface the unrecognized operator as
 * a left instead of failing the whole load. Compile rejects them up front
 * when validation is wanted.
 */

// DecodeOperand parses a JSON document into an operand tree.
func DecodeOperand(data []byte) (Operand, error) {
	raw, err := DecodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperand, err)
	}
	return ParseOperand(raw)
}

// DecodeValue parses a JSON document into a normalized Value.
// Numbers decode as json.Number so integer lexemes survive unchanged.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// ParseOperand converts a generic tree (as produced by JSON or YAML decoders)
// into an operand tree.
func ParseOperand(raw any) (Operand, error) {
	raw = Normalize(raw)
	obj, ok := raw.(map[string]any)
	if !ok {
		return Lit(raw), nil
	}
	tagVal, hasTag := obj["tag"]
	if !hasTag {
		return Lit(raw), nil
	}
	tagStr, ok := tagVal.(string)
	if !ok || tagStr == "" {
		return nil, fmt.Errorf("%w: tag must be a non-empty string", ErrInvalidOperand)
	}
	tag := Tag(tagStr)

	family := FamilyOf(tag)
	if family == FamilyUnknown {
		family = familyFromKind(obj["kind"])
	}

	switch family {
	case FamilyLogical:
		return parseLogical(tag, obj)
	case FamilyOperator:
		return parseOperator(tag, obj)
	case FamilyInjector:
		return parseInjector(tag, obj)
	default:
		return parseComparator(tag, obj)
	}
}

func familyFromKind(kind any) Family {
	s, _ := kind.(string)
	switch s {
	case "logical":
		return FamilyLogical
	case "operator":
		return FamilyOperator
	case "injector":
		return FamilyInjector
	default:
		return FamilyComparator
	}
}

func parseComparator(tag Tag, obj map[string]any) (*Comparator, error) {
	c := &Comparator{Tag: tag}
	var err error
	if c.Operand, err = optionalOperand(tag, obj, "operand"); err != nil {
		return nil, err
	}
	if c.Test, err = optionalOperand(tag, obj, "test"); err != nil {
		return nil, err
	}
	if v, ok := obj["decimalPlaces"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.decimalPlaces: %v", ErrInvalidOperand, tag, err)
		}
		c.DecimalPlaces = n
	}
	if c.Pattern, err = optionalString(tag, obj, "pattern"); err != nil {
		return nil, err
	}
	if c.Flags, err = optionalString(tag, obj, "flags"); err != nil {
		return nil, err
	}
	return c, nil
}

func parseLogical(tag Tag, obj map[string]any) (*Logical, error) {
	l := &Logical{Tag: tag}
	ops, err := operandList(tag, obj, "operands")
	if err != nil {
		return nil, err
	}
	// Not is commonly written with a single "operand".
	if single, err := optionalOperand(tag, obj, "operand"); err != nil {
		return nil, err
	} else if single != nil {
		ops = append([]Operand{single}, ops...)
	}
	l.Operands = ops
	if v, ok := obj["shortCircuit"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s.shortCircuit must be a boolean", ErrInvalidOperand, tag)
		}
		l.ShortCircuit = b
	}
	return l, nil
}

func parseOperator(tag Tag, obj map[string]any) (*Operator, error) {
	o := &Operator{Tag: tag}
	var err error
	if o.Operand, err = optionalOperand(tag, obj, "operand"); err != nil {
		return nil, err
	}
	if o.Operands, err = operandList(tag, obj, "operands"); err != nil {
		return nil, err
	}
	if v, ok := obj["decimalPlaces"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.decimalPlaces: %v", ErrInvalidOperand, tag, err)
		}
		o.DecimalPlaces = &n
	}
	fields := []struct {
		key string
		dst *string
	}{
		{"locale", &o.Locale},
		{"currency", &o.Currency},
		{"layout", &o.Layout},
		{"separator", &o.Separator},
		{"pattern", &o.Pattern},
		{"replacement", &o.Replacement},
		{"template", &o.Template},
	}
	for _, f := range fields {
		if *f.dst, err = optionalString(tag, obj, f.key); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func parseInjector(tag Tag, obj map[string]any) (*Injector, error) {
	in := &Injector{Tag: tag, Value: obj["value"]}
	var err error
	if in.Name, err = optionalString(tag, obj, "name"); err != nil {
		return nil, err
	}
	if in.Path, err = optionalString(tag, obj, "path"); err != nil {
		return nil, err
	}
	policy, err := optionalString(tag, obj, "onMissing")
	if err != nil {
		return nil, err
	}
	switch MissingPolicy(policy) {
	case "", OnMissingFail:
		in.OnMissing = OnMissingFail
	case OnMissingNull:
		in.OnMissing = OnMissingNull
	default:
		return nil, fmt.Errorf("%w: %s.onMissing must be %q or %q", ErrInvalidOperand, tag, OnMissingFail, OnMissingNull)
	}
	return in, nil
}

func optionalOperand(tag Tag, obj map[string]any, key string) (Operand, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	op, err := ParseOperand(v)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", tag, key, err)
	}
	return op, nil
}

func operandList(tag Tag, obj map[string]any, key string) ([]Operand, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s must be an array", ErrInvalidOperand, tag, key)
	}
	ops := make([]Operand, 0, len(arr))
	for i, elem := range arr {
		op, err := ParseOperand(elem)
		if err != nil {
			return nil, fmt.Errorf("%s.%s[%d]: %w", tag, key, i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func optionalString(tag Tag, obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s must be a string", ErrInvalidOperand, tag, key)
	}
	return s, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", n.String())
		}
		return int(i), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}
