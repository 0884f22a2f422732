// internal/engine/evaluate_test.go
package engine

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

// mustDecode parses a JSON operand document or fails the test.
func mustDecode(t *testing.T, doc string) types.Operand {
	t.Helper()
	op, err := types.DecodeOperand([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeOperand(%s) error = %v, want nil", doc, err)
	}
	return op
}

// messages flattens a left into "Operator: Message" strings.
func messages(result types.Either) []string {
	var out []string
	for _, e := range result.Errors() {
		out = append(out, e.Error())
	}
	return out
}

// outcome is a comparable view of an Either for cmp.Diff.
type outcome struct {
	Right  bool
	Value  types.Value
	Errors []string
}

func outcomeOf(result types.Either) outcome {
	v, ok := result.Value()
	return outcome{Right: ok, Value: v, Errors: messages(result)}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		arg    types.Value
		locals types.LocalValues
		want   outcome
	}{
		{
			name: "integer gate on a computed field",
			doc:  `{"tag": "IsInteger", "operand": "7"}`,
			want: outcome{Right: true, Value: "7"},
		},
		{
			name: "precision gate failure",
			doc:  `{"tag": "IsPrecisionNumber", "decimalPlaces": 2, "operand": "3.14159"}`,
			want: outcome{Errors: []string{
				"IsPrecisionNumber: 3.14159 is not a precision number of up to 2 decimal places.",
			}},
		},
		{
			name: "nested short-circuit surfaces inner failure",
			doc:  `{"tag": "IsInteger", "operand": {"tag": "IsRealNumber", "operand": "abc"}}`,
			want: outcome{Errors: []string{"IsRealNumber: abc is not a real number."}},
		},
		{
			name: "literal evaluates to itself",
			doc:  `"hello"`,
			want: outcome{Right: true, Value: "hello"},
		},
		{
			name: "comparator without operand tests the argument",
			doc:  `{"tag": "IsInteger"}`,
			arg:  "12",
			want: outcome{Right: true, Value: "12"},
		},
		{
			name: "unknown tag is a left naming the tag",
			doc:  `{"tag": "IsPalindrome", "operand": "abba"}`,
			want: outcome{Errors: []string{`IsPalindrome: unknown operator "IsPalindrome".`}},
		},
		{
			name: "unknown operator kind",
			doc:  `{"tag": "Modulo", "kind": "operator", "operands": [1, 2]}`,
			want: outcome{Errors: []string{`Modulo: unknown operator "Modulo".`}},
		},
		{
			name:   "precision check over arithmetic over field reference",
			doc:    `{"tag": "IsPrecisionNumber", "decimalPlaces": 2, "operand": {"tag": "Multiply", "operands": [{"tag": "FromLocalValues", "name": "price"}, "2"]}}`,
			locals: types.LocalValues{"price": "1.25"},
			want:   outcome{Right: true, Value: json.Number("2.50")},
		},
		{
			name: "number value passes integer gate unchanged",
			doc:  `{"tag": "IsInteger", "operand": 42}`,
			want: outcome{Right: true, Value: json.Number("42")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(mustDecode(t, tt.doc), tt.arg, tt.locals)
			if diff := cmp.Diff(tt.want, outcomeOf(got)); diff != "" {
				t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluate_NilOperand(t *testing.T) {
	got := Evaluate(nil, "x", nil)
	if !got.IsLeft() {
		t.Fatalf("Evaluate(nil) IsLeft = false, want true")
	}
	if msgs := messages(got); len(msgs) != 1 || msgs[0] != "Evaluate: missing operand." {
		t.Errorf("Evaluate(nil) errors = %v, want [Evaluate: missing operand.]", msgs)
	}

	var typed *types.Comparator
	if got := Evaluate(typed, "x", nil); !got.IsLeft() {
		t.Errorf("Evaluate(typed nil) IsLeft = false, want true")
	}
}

func TestEvaluate_CyclicTreeStopsAtMaxDepth(t *testing.T) {
	node := &types.Comparator{Tag: types.TagIsString}
	node.Operand = node

	got := Evaluate(node, "x", nil)
	if !got.IsLeft() {
		t.Fatalf("Evaluate(cycle) IsLeft = false, want true")
	}
	errs := got.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "maximum depth") {
		t.Errorf("Evaluate(cycle) errors = %v, want one maximum depth error", messages(got))
	}
}

func TestEvaluate_ErrorCarriesFailingNode(t *testing.T) {
	inner := &types.Comparator{Tag: types.TagIsRealNumber, Operand: types.Lit("abc")}
	outer := &types.Comparator{Tag: types.TagIsInteger, Operand: inner}

	got := Evaluate(outer, nil, nil)
	errs := got.Errors()
	if len(errs) != 1 {
		t.Fatalf("Evaluate() errors = %d, want 1", len(errs))
	}
	if errs[0].Operand != inner {
		t.Errorf("Operand = %v, want the inner IsRealNumber node", errs[0].Operand)
	}
	if errs[0].Operator != "IsRealNumber" {
		t.Errorf("Operator = %q, want IsRealNumber", errs[0].Operator)
	}
}

func TestEvaluate_ShortCircuitSkipsOuterLogic(t *testing.T) {
	calls := 0
	e := New(WithComparator("Counted", func(node *types.Comparator, value types.Value, resolved types.Either) types.Either {
		calls++
		return resolved
	}))

	op := &types.Comparator{
		Tag:     "Counted",
		Operand: &types.Comparator{Tag: types.TagIsRealNumber, Operand: types.Lit("abc")},
	}
	got := e.Evaluate(op, nil, nil)
	if !got.IsLeft() {
		t.Fatalf("Evaluate() IsLeft = false, want true")
	}
	if calls != 0 {
		t.Errorf("Counted calls = %d, want 0", calls)
	}

	got = e.Evaluate(&types.Comparator{Tag: "Counted", Operand: types.Lit("1")}, nil, nil)
	if !got.IsRight() || calls != 1 {
		t.Errorf("Counted over right: IsRight = %v, calls = %d; want true, 1", got.IsRight(), calls)
	}
}

func TestEvaluate_BuiltinsTakePrecedenceOverCustom(t *testing.T) {
	e := New(WithComparator(types.TagIsInteger, func(node *types.Comparator, value types.Value, resolved types.Either) types.Either {
		return resolved
	}))
	got := e.Evaluate(&types.Comparator{Tag: types.TagIsInteger, Operand: types.Lit("abc")}, nil, nil)
	if !got.IsLeft() {
		t.Errorf("Evaluate() IsLeft = false, want built-in IsInteger to run")
	}
}

func TestEvaluate_CustomOperator(t *testing.T) {
	e := New(WithOperator("Reverse", func(node *types.Operator, args []types.Value) types.Either {
		s, _ := args[0].(string)
		r := []rune(s)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return types.Right(string(r))
	}))
	got := e.Evaluate(&types.Operator{Tag: "Reverse", Operand: types.Lit("abc")}, nil, nil)
	if v, _ := got.Value(); v != "cba" {
		t.Errorf("Reverse = %v, want cba", v)
	}
}

// Property: referential transparency. Same inputs give an identical Either.
func TestEvaluate_PropertyDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	op := mustDecode(t, `{"tag": "And", "operands": [
		{"tag": "IsInteger", "operand": {"tag": "FromLocalValues", "name": "qty"}},
		{"tag": "IsPrecisionNumber", "decimalPlaces": 2},
		{"tag": "IsMoreThan", "test": 0}
	]}`)

	properties.Property("evaluation is deterministic", prop.ForAll(
		func(arg string, qty string) bool {
			locals := types.LocalValues{"qty": qty}
			first := Evaluate(op, arg, locals)
			second := Evaluate(op, arg, locals)
			return cmp.Diff(outcomeOf(first), outcomeOf(second)) == ""
		},
		gen.AnyString(),
		gen.NumString(),
	))

	properties.TestingRun(t)
}

// Property: LocalValues is never mutated by evaluation.
func TestEvaluate_PropertyLocalValuesUnchanged(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	op := mustDecode(t, `{"tag": "Add", "operands": [
		{"tag": "FromLocalValues", "name": "a"},
		{"tag": "FromLocalValues", "name": "b", "path": "items[*]"}
	]}`)

	properties.Property("local values unchanged", prop.ForAll(
		func(a int64, items []int64) bool {
			list := make([]any, len(items))
			for i, n := range items {
				list[i] = json.Number(strconv.FormatInt(n, 10))
			}
			locals := types.LocalValues{
				"a": json.Number(strconv.FormatInt(a, 10)),
				"b": map[string]any{"items": list},
			}
			before, _ := json.Marshal(locals)
			_ = Evaluate(op, nil, locals)
			after, _ := json.Marshal(locals)
			return string(before) == string(after)
		},
		gen.Int64(),
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}

// Property: every left carries at least one error.
func TestEvaluate_PropertyLeftNonEmpty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	tags := []types.Tag{
		types.TagIsInteger, types.TagIsNumber, types.TagIsRealNumber, types.TagIsPrecisionNumber,
		types.TagIsDate, types.TagIsEmpty, types.TagIsNotEmpty, types.TagIsTrue,
	}

	properties.Property("left implies errors", prop.ForAll(
		func(s string, i int) bool {
			op := &types.Comparator{Tag: tags[i%len(tags)], Operand: types.Lit(s), DecimalPlaces: i % 4}
			got := Evaluate(op, nil, nil)
			if got.IsLeft() {
				return len(got.Errors()) > 0
			}
			v, ok := got.Value()
			return ok && v == s
		},
		gen.AnyString(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
