package types

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []PathSegment
	}{
		{"", nil},
		{"$", nil},
		{"name", []PathSegment{{Key: "name"}}},
		{"$.address.city", []PathSegment{{Key: "address"}, {Key: "city"}}},
		{"lines[0].amount", []PathSegment{{Key: "lines"}, {Index: 0, IsIndex: true}, {Key: "amount"}}},
		{"items[*].price", []PathSegment{{Key: "items"}, {Wildcard: true}, {Key: "price"}}},
		{"*.value", []PathSegment{{Wildcard: true}, {Key: "value"}}},
		{"grid[1][2]", []PathSegment{{Key: "grid"}, {Index: 1, IsIndex: true}, {Index: 2, IsIndex: true}}},
		{"[3]", []PathSegment{{Index: 3, IsIndex: true}}},
	}
	for _, tt := range tests {
		got, err := ParsePath(tt.path)
		if err != nil {
			t.Errorf("ParsePath(%q) error = %v", tt.path, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParsePath(%q) mismatch (-want +got):\n%s", tt.path, diff)
		}
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, path := range []string{"a..b", "a.", "a[", "a[x]", "a[-1]", "a[0"} {
		if _, err := ParsePath(path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ParsePath(%q) error = %v, want %v", path, err, ErrInvalidPath)
		}
	}
}

func TestPathSegment_String(t *testing.T) {
	segs := []PathSegment{{Key: "a"}, {Index: 2, IsIndex: true}, {Wildcard: true}}
	want := []string{"a", "[2]", "[*]"}
	for i, seg := range segs {
		if got := seg.String(); got != want[i] {
			t.Errorf("PathSegment.String() = %q, want %q", got, want[i])
		}
	}
}

func TestValidatePath(t *testing.T) {
	deep := make([]PathSegment, MaxPathDepth+1)
	for i := range deep {
		deep[i] = PathSegment{Key: "k"}
	}
	if err := ValidatePath(deep); err != ErrPathTooDeep {
		t.Errorf("ValidatePath(deep) = %v, want %v", err, ErrPathTooDeep)
	}
	if err := ValidatePath(deep[:MaxPathDepth]); err != nil {
		t.Errorf("ValidatePath(max depth) = %v, want nil", err)
	}

	wild := []PathSegment{{Wildcard: true}, {Key: "a"}, {Wildcard: true}}
	if err := ValidatePath(wild); err != nil {
		t.Errorf("ValidatePath(2 wildcards) = %v, want nil", err)
	}
	if err := ValidatePath(append(wild, PathSegment{Wildcard: true})); err != ErrTooManyWildcards {
		t.Errorf("ValidatePath(3 wildcards) = %v, want %v", err, ErrTooManyWildcards)
	}
}
