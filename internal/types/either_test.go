package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEither_RightAndLeft(t *testing.T) {
	r := Right("v")
	if !r.IsRight() || r.IsLeft() {
		t.Fatalf("Right() IsRight = %v, IsLeft = %v; want true, false", r.IsRight(), r.IsLeft())
	}
	if v, ok := r.Value(); !ok || v != "v" {
		t.Errorf("Right().Value() = %v, %v; want v, true", v, ok)
	}
	if errs := r.Errors(); errs != nil {
		t.Errorf("Right().Errors() = %v, want nil", errs)
	}

	first := NewError(nil, "IsInteger", "a is not an integer.")
	second := NewError(nil, "IsInteger", "b is not an integer.")
	l := Left(first, second)
	if !l.IsLeft() {
		t.Fatalf("Left() IsLeft = false, want true")
	}
	if v, ok := l.Value(); ok || v != nil {
		t.Errorf("Left().Value() = %v, %v; want nil, false", v, ok)
	}
	if got := l.Errors(); len(got) != 2 || got[0].Message != first.Message || got[1].Message != second.Message {
		t.Errorf("Left().Errors() = %v, want [%v %v]", got, first, second)
	}
}

func TestEither_ZeroIsRightNil(t *testing.T) {
	var e Either
	if v, ok := e.Value(); !ok || v != nil {
		t.Errorf("zero Either Value() = %v, %v; want nil, true", v, ok)
	}
}

func TestEither_ErrorsReturnsCopy(t *testing.T) {
	l := Left(NewError(nil, "Op", "original."))
	errs := l.Errors()
	errs[0].Message = "changed."
	if got := l.Errors()[0].Message; got != "original." {
		t.Errorf("Errors()[0].Message = %q after caller mutation, want original.", got)
	}
}

func TestConcat(t *testing.T) {
	a := NewError(nil, "A", "a.")
	b := NewError(nil, "B", "b.")
	c := NewError(nil, "C", "c.")

	got, failed := Concat(Left(a), Right(1), Left(b, c))
	if !failed {
		t.Fatalf("Concat() failed = false, want true")
	}
	var msgs []string
	for _, e := range got.Errors() {
		msgs = append(msgs, e.Error())
	}
	if diff := cmp.Diff([]string{"A: a.", "B: b.", "C: c."}, msgs); diff != "" {
		t.Errorf("Concat() order mismatch (-want +got):\n%s", diff)
	}

	if _, failed := Concat(Right(1), Right(2)); failed {
		t.Errorf("Concat(rights) failed = true, want false")
	}
}

func TestEither_JSON(t *testing.T) {
	node := &Comparator{Tag: TagIsInteger, Operand: Lit("x")}
	left := Left(NewError(node, "IsInteger", "x is not an integer."))

	data, err := json.Marshal(left)
	if err != nil {
		t.Fatalf("Marshal(left) error = %v", err)
	}
	want := `{"left":[{"operator":"IsInteger","message":"x is not an integer.","operand":{"operand":"x","tag":"IsInteger"}}]}`
	if string(data) != want {
		t.Errorf("Marshal(left) = %s, want %s", data, want)
	}

	var back Either
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal(left) error = %v", err)
	}
	errs := back.Errors()
	if len(errs) != 1 || errs[0].Error() != "IsInteger: x is not an integer." {
		t.Errorf("Unmarshal(left) errors = %v", errs)
	}
	if c, ok := errs[0].Operand.(*Comparator); !ok || c.Tag != TagIsInteger {
		t.Errorf("Unmarshal(left) operand = %#v, want IsInteger comparator", errs[0].Operand)
	}

	data, err = json.Marshal(Right(json.Number("2.50")))
	if err != nil {
		t.Fatalf("Marshal(right) error = %v", err)
	}
	if string(data) != `{"right":2.50}` {
		t.Errorf("Marshal(right) = %s, want {\"right\":2.50}", data)
	}

	if err := json.Unmarshal([]byte(`{}`), &back); err == nil {
		t.Errorf("Unmarshal({}) error = nil, want error")
	}
}

func TestEither_ConfigurationErrors(t *testing.T) {
	check := NewError(nil, "IsInteger", "a is not an integer.")
	broken := NewConfigError(nil, "IsIntegr", `unknown operator "IsIntegr".`)

	tests := []struct {
		name   string
		either Either
		want   bool
	}{
		{"right", Right(1), false},
		{"validation only", Left(check), false},
		{"configuration only", Left(broken), true},
		{"mixed after concat", mustConcat(t, Left(check), Left(broken)), true},
	}
	for _, tt := range tests {
		if got := tt.either.HasConfigurationError(); got != tt.want {
			t.Errorf("%s: HasConfigurationError() = %v, want %v", tt.name, got, tt.want)
		}
	}

	data, err := json.Marshal(Left(check, broken))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"left":[{"operator":"IsInteger","message":"a is not an integer."},` +
		`{"operator":"IsIntegr","message":"unknown operator \"IsIntegr\".","kind":"configuration"}]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back Either
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	kinds := []ErrorKind{}
	for _, e := range back.Errors() {
		kinds = append(kinds, e.Kind)
	}
	if diff := cmp.Diff([]ErrorKind{KindValidation, KindConfiguration}, kinds); diff != "" {
		t.Errorf("Unmarshal() kinds mismatch (-want +got):\n%s", diff)
	}
}

func mustConcat(t *testing.T, results ...Either) Either {
	t.Helper()
	merged, failed := Concat(results...)
	if !failed {
		t.Fatal("Concat() failed = false, want true")
	}
	return merged
}
