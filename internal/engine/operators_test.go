// internal/engine/operators_test.go
package engine

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

func places(n int) *int { return &n }

func lits(values ...types.Value) []types.Operand {
	ops := make([]types.Operand, len(values))
	for i, v := range values {
		ops[i] = types.Lit(v)
	}
	return ops
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		node *types.Operator
		want json.Number
	}{
		{"add decimals exactly", &types.Operator{Tag: types.TagAdd, Operands: lits("0.1", "0.2")}, "0.3"},
		{"add mixed forms", &types.Operator{Tag: types.TagAdd, Operands: lits(json.Number("1"), 2.5, "3")}, "6.5"},
		{"add list", &types.Operator{Tag: types.TagAdd, Operand: types.Lit([]any{"1", "2", "3"})}, "6"},
		{"subtract", &types.Operator{Tag: types.TagSubtract, Operands: lits("10", "4.5")}, "5.5"},
		{"multiply", &types.Operator{Tag: types.TagMultiply, Operands: lits("1.5", "2")}, "3.0"},
		{"divide", &types.Operator{Tag: types.TagDivide, Operands: lits("1", "4")}, "0.25"},
		{"remainder", &types.Operator{Tag: types.TagRemainder, Operands: lits("7", "3")}, "1"},
		{"negate", &types.Operator{Tag: types.TagNegate, Operand: types.Lit("5")}, "-5"},
		{"negate zero", &types.Operator{Tag: types.TagNegate, Operand: types.Lit("0")}, "0"},
		{"absolute value", &types.Operator{Tag: types.TagAbsoluteValue, Operand: types.Lit("-3.5")}, "3.5"},
		{"min", &types.Operator{Tag: types.TagMin, Operands: lits("3", "1", "2")}, "1"},
		{"max", &types.Operator{Tag: types.TagMax, Operands: lits("3", "10", "2")}, "10"},
		{"average", &types.Operator{Tag: types.TagAverage, Operand: types.Lit([]any{"1", "2", "3", "4"})}, "2.5"},
		{"round half up", &types.Operator{Tag: types.TagRound, Operand: types.Lit("2.5")}, "3"},
		{"round places", &types.Operator{Tag: types.TagRound, DecimalPlaces: places(2), Operand: types.Lit("2.345")}, "2.35"},
		{"round pads places", &types.Operator{Tag: types.TagRound, DecimalPlaces: places(2), Operand: types.Lit("3")}, "3.00"},
		{"floor negative", &types.Operator{Tag: types.TagFloor, Operand: types.Lit("-2.5")}, "-3"},
		{"ceiling", &types.Operator{Tag: types.TagCeiling, Operand: types.Lit("2.1")}, "3"},
		{"truncate negative", &types.Operator{Tag: types.TagTruncate, Operand: types.Lit("-2.7")}, "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, nil, nil)
			v, ok := got.Value()
			if !ok {
				t.Fatalf("%s errors = %v, want right(%s)", tt.node.Tag, messages(got), tt.want)
			}
			if v != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.node.Tag, v, tt.want)
			}
		})
	}
}

func TestArithmetic_Power(t *testing.T) {
	got := Evaluate(&types.Operator{Tag: types.TagPower, Operands: lits("2", "10")}, nil, nil)
	v, ok := got.Value()
	if !ok || !equal(v, json.Number("1024")) {
		t.Errorf("Power(2, 10) = %v (%v), want 1024", v, messages(got))
	}
}

func TestArithmetic_Failures(t *testing.T) {
	tests := []struct {
		name string
		node *types.Operator
		want []string
	}{
		{
			"division by zero",
			&types.Operator{Tag: types.TagDivide, Operands: lits("1", "0")},
			[]string{"Divide: division by zero."},
		},
		{
			"remainder by zero",
			&types.Operator{Tag: types.TagRemainder, Operands: lits("1", "0.0")},
			[]string{"Remainder: division by zero."},
		},
		{
			"every non-number reported",
			&types.Operator{Tag: types.TagAdd, Operands: lits("a", "1", true)},
			[]string{"Add: a is not a number.", "Add: true is not a number."},
		},
		{
			"binary arity",
			&types.Operator{Tag: types.TagSubtract, Operands: lits("1", "2", "3")},
			[]string{"Subtract: expects 2 operand(s), got 3."},
		},
		{
			"unary arity",
			&types.Operator{Tag: types.TagNegate, Operands: lits("1", "2")},
			[]string{"Negate: expects 1 operand(s), got 2."},
		},
		{
			"negative places",
			&types.Operator{Tag: types.TagRound, DecimalPlaces: places(-1), Operand: types.Lit("1")},
			[]string{"Round: decimal places must not be negative, got -1."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, nil, nil)
			if diff := cmp.Diff(tt.want, messages(got)); diff != "" {
				t.Errorf("%s errors mismatch (-want +got):\n%s", tt.node.Tag, diff)
			}
		})
	}
}

func TestOperators_ChildFailuresSkipOperator(t *testing.T) {
	calls := 0
	e := New(WithOperator("Count", func(node *types.Operator, args []types.Value) types.Either {
		calls++
		return types.Right(len(args))
	}))

	op := &types.Operator{Tag: "Count", Operands: []types.Operand{
		isInteger("x"),
		isInteger("1"),
		isInteger("y"),
	}}
	got := e.Evaluate(op, nil, nil)
	want := []string{"IsInteger: x is not an integer.", "IsInteger: y is not an integer."}
	if diff := cmp.Diff(want, messages(got)); diff != "" {
		t.Errorf("Count errors mismatch (-want +got):\n%s", diff)
	}
	if calls != 0 {
		t.Errorf("Count calls = %d, want 0", calls)
	}
}

func TestOperators_NoChildrenUseArgument(t *testing.T) {
	got := Evaluate(&types.Operator{Tag: types.TagNegate}, json.Number("4"), nil)
	if v, _ := got.Value(); v != json.Number("-4") {
		t.Errorf("Negate(argument) = %v, want -4", v)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		node *types.Operator
		arg  types.Value
		want types.Value
	}{
		{"concatenate", &types.Operator{Tag: types.TagConcatenate, Separator: "-", Operands: lits("a", json.Number("1"), true)}, nil, "a-1-true"},
		{"concatenate list", &types.Operator{Tag: types.TagConcatenate, Separator: ", ", Operand: types.Lit([]any{"x", "y"})}, nil, "x, y"},
		{"template", &types.Operator{Tag: types.TagTemplate, Template: "{0} of {1}", Operands: lits("3", "5")}, nil, "3 of 5"},
		{"template repeats", &types.Operator{Tag: types.TagTemplate, Template: "{0}{0}"}, "ab", "abab"},
		{"uppercase", &types.Operator{Tag: types.TagUppercase, Operand: types.Lit("straße")}, nil, "STRASSE"},
		{"uppercase turkish", &types.Operator{Tag: types.TagUppercase, Locale: "tr", Operand: types.Lit("i")}, nil, "İ"},
		{"lowercase", &types.Operator{Tag: types.TagLowercase, Operand: types.Lit("HeLLo")}, nil, "hello"},
		{"trim", &types.Operator{Tag: types.TagTrim}, "  padded \t", "padded"},
		{"replace", &types.Operator{Tag: types.TagReplace, Pattern: `\s+`, Replacement: "_", Operand: types.Lit("a  b c")}, nil, "a_b_c"},
		{"replace groups", &types.Operator{Tag: types.TagReplace, Pattern: `(\w+)@(\w+)`, Replacement: "$2 at $1", Operand: types.Lit("me@home")}, nil, "home at me"},
		{"length", &types.Operator{Tag: types.TagLength, Operand: types.Lit("héllo")}, nil, json.Number("5")},
		{"length of list", &types.Operator{Tag: types.TagLength}, []any{1, 2, 3}, json.Number("3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, tt.arg, nil)
			v, ok := got.Value()
			if !ok {
				t.Fatalf("%s errors = %v, want right(%v)", tt.node.Tag, messages(got), tt.want)
			}
			if v != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.node.Tag, v, tt.want)
			}
		})
	}
}

func TestStrings_Failures(t *testing.T) {
	tests := []struct {
		name string
		node *types.Operator
		want []string
	}{
		{"template missing operand", &types.Operator{Tag: types.TagTemplate, Template: "{0} {2}", Operands: lits("a")}, []string{"Template: template references missing operand {2}."}},
		{"uppercase non-string", &types.Operator{Tag: types.TagUppercase, Operand: types.Lit(json.Number("1"))}, []string{"Uppercase: 1 is not a string."}},
		{"bad locale", &types.Operator{Tag: types.TagLowercase, Locale: "not a locale!", Operand: types.Lit("A")}, []string{`Lowercase: "not a locale!" is not a valid locale.`}},
		{"bad replace pattern", &types.Operator{Tag: types.TagReplace, Pattern: "[", Operand: types.Lit("a")}, []string{`Replace: "[" is not a valid pattern.`}},
		{"length of number", &types.Operator{Tag: types.TagLength, Operand: types.Lit(true)}, []string{"Length: true has no length."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, nil, nil)
			if diff := cmp.Diff(tt.want, messages(got)); diff != "" {
				t.Errorf("%s errors mismatch (-want +got):\n%s", tt.node.Tag, diff)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	march := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		node *types.Operator
		want string
	}{
		{"number en", &types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("1234567.891")}, "1,234,567.891"},
		{"number de", &types.Operator{Tag: types.TagFormatNumber, Locale: "de-DE", Operand: types.Lit("1234567.891")}, "1.234.567,891"},
		{"number places", &types.Operator{Tag: types.TagFormatNumber, DecimalPlaces: places(2), Operand: types.Lit("1234.5")}, "1,234.50"},
		{"percent", &types.Operator{Tag: types.TagFormatPercent, Operand: types.Lit("0.25")}, "25%"},
		{"percent places", &types.Operator{Tag: types.TagFormatPercent, DecimalPlaces: places(1), Operand: types.Lit("0.12345")}, "12.3%"},
		{"number keeps long digits", &types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("12345678901234567.89")}, "12,345,678,901,234,567.89"},
		{"number beyond int64", &types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("123456789012345678901.5")}, "123,456,789,012,345,678,901.5"},
		{"number drops trailing zeros", &types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("2.500")}, "2.5"},
		{"number negative fraction", &types.Operator{Tag: types.TagFormatNumber, DecimalPlaces: places(2), Operand: types.Lit("-0.005")}, "-0.01"},
		{"number places de", &types.Operator{Tag: types.TagFormatNumber, Locale: "de-DE", DecimalPlaces: places(2), Operand: types.Lit("9876543.215")}, "9.876.543,22"},
		{"date long en", &types.Operator{Tag: types.TagFormatDate, Operand: types.Lit(march)}, "March 5, 2024"},
		{"date layout fr", &types.Operator{Tag: types.TagFormatDate, Locale: "fr-FR", Layout: "2 January 2006", Operand: types.Lit("2024-03-05")}, "5 mars 2024"},
		{"date short en", &types.Operator{Tag: types.TagFormatDate, Layout: "short", Operand: types.Lit("2024-03-05")}, "3/5/24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, nil, nil)
			v, ok := got.Value()
			if !ok {
				t.Fatalf("%s errors = %v, want right(%q)", tt.node.Tag, messages(got), tt.want)
			}
			if v != tt.want {
				t.Errorf("%s = %q, want %q", tt.node.Tag, v, tt.want)
			}
		})
	}
}

func TestFormat_Currency(t *testing.T) {
	got := Evaluate(&types.Operator{Tag: types.TagFormatCurrency, Currency: "USD", Operand: types.Lit("1234.5")}, nil, nil)
	v, ok := got.Value()
	if !ok {
		t.Fatalf("FormatCurrency errors = %v, want right", messages(got))
	}
	s, _ := v.(string)
	if !strings.Contains(s, "$") || !strings.Contains(s, "1,234.50") {
		t.Errorf("FormatCurrency = %q, want $ and 1,234.50", s)
	}

	tests := []struct {
		name   string
		places *int
		in     string
		want   string
	}{
		{"standard scale", nil, "1234.567", "$ 1,234.57"},
		{"no places", places(0), "1234.567", "$ 1,235"},
		{"three places", places(3), "0.1", "$ 0.100"},
		{"exact long amount", nil, "98765432109876543.21", "$ 98,765,432,109,876,543.21"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &types.Operator{Tag: types.TagFormatCurrency, Currency: "USD", DecimalPlaces: tt.places, Operand: types.Lit(tt.in)}
			if v, _ := Evaluate(node, nil, nil).Value(); v != tt.want {
				t.Errorf("FormatCurrency(%s) = %v, want %q", tt.in, v, tt.want)
			}
		})
	}

	got = Evaluate(&types.Operator{Tag: types.TagFormatCurrency, Currency: "XYZZY", Operand: types.Lit("1")}, nil, nil)
	if diff := cmp.Diff([]string{`FormatCurrency: "XYZZY" is not a currency code.`}, messages(got)); diff != "" {
		t.Errorf("FormatCurrency errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_EngineLocale(t *testing.T) {
	e := New(WithLocale("de-DE"))
	got := e.Evaluate(&types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("1234.5")}, nil, nil)
	if v, _ := got.Value(); v != "1.234,5" {
		t.Errorf("FormatNumber(de-DE engine) = %v, want 1.234,5", v)
	}
}

func TestFormat_Failures(t *testing.T) {
	tests := []struct {
		name string
		node *types.Operator
		want []string
	}{
		{"number of word", &types.Operator{Tag: types.TagFormatNumber, Operand: types.Lit("many")}, []string{"FormatNumber: many is not a number."}},
		{"date of word", &types.Operator{Tag: types.TagFormatDate, Operand: types.Lit("someday")}, []string{"FormatDate: someday is not a date."}},
		{"two operands", &types.Operator{Tag: types.TagFormatPercent, Operands: lits("1", "2")}, []string{"FormatPercent: expects 1 operand(s), got 2."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.node, nil, nil)
			if diff := cmp.Diff(tt.want, messages(got)); diff != "" {
				t.Errorf("%s errors mismatch (-want +got):\n%s", tt.node.Tag, diff)
			}
		})
	}
}

// Property: Add and Subtract are inverse on integers.
func TestArithmetic_PropertyAddSubtract(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("(a + b) - b == a", prop.ForAll(
		func(a, b int32) bool {
			sum := &types.Operator{Tag: types.TagAdd, Operands: lits(int64(a), int64(b))}
			op := &types.Operator{Tag: types.TagSubtract, Operands: []types.Operand{sum, types.Lit(int64(b))}}
			got, ok := Evaluate(op, nil, nil).Value()
			return ok && equal(got, int64(a))
		},
		gen.Int32(),
		gen.Int32(),
	))

	properties.TestingRun(t)
}
