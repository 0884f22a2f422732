// internal/types/path.go
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// PathSegment represents one component of a field path.
// String for object keys, int for array indices, wildcard for array expansion.
type PathSegment struct {
	Key      string // object key (mutually exclusive with Index/Wildcard)
	Index    int    // array index (mutually exclusive with Key/Wildcard)
	IsIndex  bool   // disambiguates Index=0 from unset
	Wildcard bool   // true = wildcard segment
}

// String renders the segment in path syntax.
func (s PathSegment) String() string {
	switch {
	case s.Wildcard:
		return "[*]"
	case s.IsIndex:
		return "[" + strconv.Itoa(s.Index) + "]"
	default:
		return s.Key
	}
}

// ParsePath parses dotted path syntax: "address.lines[0]", "items[*].price",
// "*.value". A leading "$." is accepted and ignored. The empty path selects
// the root value.
func ParsePath(s string) ([]PathSegment, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, nil
	}

	var segs []PathSegment
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, s)
		}
		key := part
		rest := ""
		if i := strings.IndexByte(part, '['); i >= 0 {
			key, rest = part[:i], part[i:]
		}
		switch key {
		case "":
		case "*":
			segs = append(segs, PathSegment{Wildcard: true})
		default:
			segs = append(segs, PathSegment{Key: key})
		}
		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if rest[0] != '[' || end < 0 {
				return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrInvalidPath, s)
			}
			inner := rest[1:end]
			rest = rest[end+1:]
			if inner == "*" {
				segs = append(segs, PathSegment{Wildcard: true})
				continue
			}
			idx, err := strconv.Atoi(inner)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: bad index %q in %q", ErrInvalidPath, inner, s)
			}
			segs = append(segs, PathSegment{Index: idx, IsIndex: true})
		}
	}
	return segs, nil
}

// ValidatePath enforces MaxPathDepth and MaxNestedWildcards.
func ValidatePath(path []PathSegment) error {
	if len(path) > MaxPathDepth {
		return ErrPathTooDeep
	}
	wildcards := 0
	for _, seg := range path {
		if seg.Wildcard {
			wildcards++
		}
	}
	if wildcards > MaxNestedWildcards {
		return ErrTooManyWildcards
	}
	return nil
}
