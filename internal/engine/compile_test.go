// internal/engine/compile_test.go
package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

func TestCompile_Valid(t *testing.T) {
	op := mustDecode(t, `{"tag": "And", "operands": [
		{"tag": "IsInteger", "operand": {"tag": "FromLocalValues", "name": "qty"}},
		{"tag": "IsMoreThan", "operand": {"tag": "FromLocalValues", "name": "qty"}, "test": 0}
	]}`)

	compiled, err := Compile(op)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	wantTags := []types.Tag{types.TagAnd, types.TagFromLocalValues, types.TagIsInteger, types.TagIsMoreThan}
	if diff := cmp.Diff(wantTags, compiled.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if compiled.Depth != 3 {
		t.Errorf("Depth = %d, want 3", compiled.Depth)
	}

	// And + IsInteger + injector + IsMoreThan + injector + literal
	wantCost := CostLogical + CostLexical + CostLookupRoot + CostOrdering + CostLookupRoot + CostLiteral
	if compiled.Cost != wantCost {
		t.Errorf("Cost = %d, want %d", compiled.Cost, wantCost)
	}
	if compiled.Root != op {
		t.Errorf("Root = %v, want the input tree", compiled.Root)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"unknown comparator", `{"tag": "IsPalindrome"}`, types.ErrUnknownOperator},
		{"unknown operator", `{"tag": "Modulo", "kind": "operator", "operands": [1, 2]}`, types.ErrUnknownOperator},
		{"binary comparator without test", `{"tag": "IsEqualTo", "operand": 1}`, types.ErrArity},
		{"negative precision", `{"tag": "IsPrecisionNumber", "decimalPlaces": -1}`, types.ErrInvalidParameter},
		{"precision over limit", `{"tag": "IsPrecisionNumber", "decimalPlaces": 1001, "operand": "3.14"}`, types.ErrInvalidParameter},
		{"round places over limit", `{"tag": "Round", "decimalPlaces": 101, "operand": 1}`, types.ErrInvalidParameter},
		{"format places over limit", `{"tag": "FormatNumber", "decimalPlaces": 5000, "operand": 1}`, types.ErrInvalidParameter},
		{"bad pattern", `{"tag": "Matches", "pattern": "("}`, types.ErrInvalidPattern},
		{"bad pattern flag", `{"tag": "Matches", "pattern": "a", "flags": "x"}`, types.ErrInvalidPattern},
		{"member test not list", `{"tag": "IsMember", "test": "abc"}`, types.ErrInvalidParameter},
		{"not without operand", `{"tag": "Not", "operands": []}`, types.ErrArity},
		{"or without operands", `{"tag": "Or", "operands": []}`, types.ErrArity},
		{"subtract arity", `{"tag": "Subtract", "operands": [1]}`, types.ErrArity},
		{"negate arity", `{"tag": "Negate", "operands": [1, 2]}`, types.ErrArity},
		{"negative places", `{"tag": "Round", "decimalPlaces": -2, "operand": 1}`, types.ErrInvalidParameter},
		{"bad locale", `{"tag": "FormatNumber", "locale": "not a locale!"}`, types.ErrInvalidParameter},
		{"bad currency", `{"tag": "FormatCurrency", "currency": "dollars"}`, types.ErrInvalidParameter},
		{"empty template", `{"tag": "Template", "operands": [1]}`, types.ErrInvalidParameter},
		{"bad replace pattern", `{"tag": "Replace", "pattern": "["}`, types.ErrInvalidPattern},
		{"local value without name", `{"tag": "FromLocalValues"}`, types.ErrInvalidParameter},
		{"bad path", `{"tag": "FromArgument", "path": "a..b"}`, types.ErrInvalidPath},
		{"too many wildcards", `{"tag": "FromArgument", "path": "a[*][*][*]"}`, types.ErrTooManyWildcards},
		{"nested error", `{"tag": "And", "operands": [{"tag": "IsInteger"}, {"tag": "Nope"}]}`, types.ErrUnknownOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(mustDecode(t, tt.doc))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompile_MissingNodes(t *testing.T) {
	tests := []struct {
		name string
		op   types.Operand
	}{
		{"nil comparator child", &types.Logical{Tag: types.TagAnd, Operands: []types.Operand{(*types.Comparator)(nil)}}},
		{"nil logical child", &types.Logical{Tag: types.TagOr, Operands: []types.Operand{(*types.Logical)(nil)}}},
		{"nil operator operand", &types.Comparator{Tag: types.TagIsInteger, Operand: (*types.Operator)(nil)}},
		{"nil injector test", &types.Comparator{Tag: types.TagIsEqualTo, Operand: types.Lit(1), Test: (*types.Injector)(nil)}},
		{"nil root", (*types.Comparator)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.op); !errors.Is(err, types.ErrInvalidOperand) {
				t.Errorf("Compile() error = %v, want %v", err, types.ErrInvalidOperand)
			}
			if got := Evaluate(tt.op, nil, nil); !got.HasConfigurationError() {
				t.Errorf("Evaluate() = %v, want a configuration left", messages(got))
			}
		})
	}
}

func TestCompile_ErrorLocation(t *testing.T) {
	op := mustDecode(t, `{"tag": "And", "operands": [{"tag": "IsInteger"}, {"tag": "Nope"}]}`)
	_, err := Compile(op)
	if err == nil || !strings.Contains(err.Error(), "$.operands[1]") {
		t.Errorf("Compile() error = %v, want location $.operands[1]", err)
	}
}

func TestCompile_Limits(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		var op types.Operand = types.Lit("x")
		for i := 0; i < types.MaxOperandDepth; i++ {
			op = &types.Comparator{Tag: types.TagIsString, Operand: op}
		}
		if _, err := Compile(op); !errors.Is(err, types.ErrOperandTooDeep) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrOperandTooDeep)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		node := &types.Comparator{Tag: types.TagIsString}
		node.Operand = node
		if _, err := Compile(node); !errors.Is(err, types.ErrOperandTooDeep) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrOperandTooDeep)
		}
	})

	t.Run("fan-out", func(t *testing.T) {
		ops := make([]types.Operand, types.MaxChildOperands+1)
		for i := range ops {
			ops[i] = types.Lit(true)
		}
		if _, err := Compile(&types.Logical{Tag: types.TagAnd, Operands: ops}); !errors.Is(err, types.ErrTooManyOperands) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrTooManyOperands)
		}
	})

	t.Run("member values", func(t *testing.T) {
		set := make([]any, types.MaxMemberValues+1)
		for i := range set {
			set[i] = i
		}
		op := &types.Comparator{Tag: types.TagIsMember, Test: types.Lit(set)}
		if _, err := Compile(op); !errors.Is(err, types.ErrTooManyMemberValues) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrTooManyMemberValues)
		}
	})

	t.Run("cost", func(t *testing.T) {
		// each wildcard lookup costs (1 + 2*128) * 64
		lookup := &types.Injector{Tag: types.TagFromArgument, Path: "a[*].b[*]"}
		ops := make([]types.Operand, 8)
		for i := range ops {
			ops[i] = &types.Comparator{Tag: types.TagIsString, Operand: lookup}
		}
		if _, err := Compile(&types.Logical{Tag: types.TagAnd, Operands: ops}); !errors.Is(err, types.ErrOperandTooCostly) {
			t.Errorf("Compile() error = %v, want %v", err, types.ErrOperandTooCostly)
		}
	})
}

func TestCompile_CustomTags(t *testing.T) {
	op := &types.Comparator{Tag: "IsPalindrome", Operand: types.Lit("abba")}

	if _, err := Compile(op); !errors.Is(err, types.ErrUnknownOperator) {
		t.Fatalf("Compile() error = %v, want %v", err, types.ErrUnknownOperator)
	}

	e := New(WithComparator("IsPalindrome", func(node *types.Comparator, value types.Value, resolved types.Either) types.Either {
		return resolved
	}))
	compiled, err := e.Compile(op)
	if err != nil {
		t.Fatalf("Engine.Compile() error = %v, want nil", err)
	}
	if compiled.Cost != CostCustom+CostLiteral {
		t.Errorf("Cost = %d, want %d", compiled.Cost, CostCustom+CostLiteral)
	}
}

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name string
		op   types.Operand
		want int
	}{
		{"nil", nil, 0},
		{"typed nil", (*types.Comparator)(nil), 0},
		{"typed nil child", &types.Logical{Tag: types.TagAnd, Operands: []types.Operand{(*types.Operator)(nil)}}, CostLogical},
		{"literal", types.Lit(1), CostLiteral},
		{"constant", &types.Injector{Tag: types.TagConstant, Value: 1}, CostConstant},
		{"root argument", &types.Injector{Tag: types.TagFromArgument}, CostLookupRoot},
		{"keyed lookup", &types.Injector{Tag: types.TagFromLocalValues, Name: "a", Path: "b.c"}, CostLookupRoot + 2*CostLookupPerSegment},
		{"wildcard lookup", &types.Injector{Tag: types.TagFromArgument, Path: "items[*].price"}, (CostLookupRoot + 2*CostLookupPerSegment) * 8},
		{"pattern", &types.Comparator{Tag: types.TagMatches, Operand: types.Lit("a")}, CostPattern + CostLiteral},
		{"format", &types.Operator{Tag: types.TagFormatDate, Operand: types.Lit("a")}, CostFormat + CostLiteral},
		{"arithmetic", &types.Operator{Tag: types.TagAdd, Operands: lits(1, 2)}, CostArithmetic + 2*CostLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateCost(tt.op); got != tt.want {
				t.Errorf("CalculateCost() = %d, want %d", got, tt.want)
			}
		})
	}
}
