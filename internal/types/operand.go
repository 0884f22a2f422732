// internal/types/operand.go
package types

/*
 * Operand tree types.
 *
 * An Operand is either a Literal value or a configuration node. Node variants
 * form a closed set (the marker method is unexported), so a type switch over
 * Literal, *Comparator, *Logical, *Operator and *Injector is exhaustive.
 *
 * Key types:
 *   - Comparator: boolean gate; passes its resolved operand through on success
 *   - Logical: And/Or/Not over an ordered list of child operands
 *   - Operator: value transformer (arithmetic, string, formatting)
 *   - Injector: reads the evaluation argument or a LocalValues entry
 *
 * Trees are built by the element-configuration layer (or decoded from JSON or
 * YAML) and are never modified during evaluation.
 */

// Operand is the universal evaluable unit.
type Operand interface {
	isOperand()
}

// Literal is a constant value embedded in the tree.
type Literal struct {
	Value Value
}

func (Literal) isOperand() {}

// Lit wraps v as a Literal operand.
func Lit(v Value) Literal {
	return Literal{Value: v}
}

// Comparator tests the value resolved from Operand.
// Test supplies the right-hand side for binary comparators.
type Comparator struct {
	Tag           Tag
	Operand       Operand
	Test          Operand
	DecimalPlaces int    // IsPrecisionNumber
	Pattern       string // Matches, DoesNotMatch
	Flags         string // regexp flags, e.g. "i"
}

func (*Comparator) isOperand() {}

// Logical combines child operands with And/Or/Not semantics.
type Logical struct {
	Tag      Tag
	Operands []Operand
	// ShortCircuit stops And at the first failing child instead of
	// collecting every child failure.
	ShortCircuit bool
}

func (*Logical) isOperand() {}

// Operator transforms resolved child values into a new value.
// Unary operators read Operand; n-ary and binary operators read Operands.
type Operator struct {
	Tag           Tag
	Operand       Operand
	Operands      []Operand
	DecimalPlaces *int
	Locale        string
	Currency      string
	Layout        string
	Separator     string
	Pattern       string
	Replacement   string
	Template      string
}

func (*Operator) isOperand() {}

// MissingPolicy controls injector behavior for unresolvable fields.
type MissingPolicy string

const (
	// OnMissingFail reports a left naming the missing field.
	OnMissingFail MissingPolicy = "fail"
	// OnMissingNull resolves missing fields to right(nil).
	OnMissingNull MissingPolicy = "null"
)

// Injector reads a value from the evaluation context.
type Injector struct {
	Tag       Tag
	Value     Value  // Constant
	Name      string // FromLocalValues
	Path      string // optional nested path, e.g. "lines[0].amount"
	OnMissing MissingPolicy
}

func (*Injector) isOperand() {}

// TagOf returns the discriminant of a node, or "" for literals and nil.
func TagOf(op Operand) Tag {
	switch n := op.(type) {
	case *Comparator:
		return n.Tag
	case *Logical:
		return n.Tag
	case *Operator:
		return n.Tag
	case *Injector:
		return n.Tag
	default:
		return ""
	}
}
