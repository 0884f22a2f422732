// internal/engine/comparisons.go
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Binary comparison logic.
 *
 * Compares a resolved value against a resolved test value with type-aware
 * rules. Form input is mostly text, so both sides are coerced before
 * comparing:
 *
 *   1. Both sides coerce to decimals: numeric comparison ("10" > 9)
 *   2. Both sides coerce to dates: chronological comparison
 *   3. Both sides are strings: lexical comparison
 *   4. Otherwise: equality is structural, ordering is undefined (left)
 *
 * Membership uses equality semantics. StartsWith/EndsWith require strings on
 * both sides, matching the prefix/suffix rules they replace.
 */

// compareBinary applies a binary comparator's predicate to value and target.
func compareBinary(node *types.Comparator, value, target types.Value, resolved types.Either) types.Either {
	tag := string(node.Tag)
	v, t := types.FormatValue(value), types.FormatValue(target)

	switch node.Tag {
	case types.TagIsEqualTo:
		return guard(node, resolved, equal(value, target), "%s is not equal to %s.", v, t)
	case types.TagIsUnequalTo:
		return guard(node, resolved, !equal(value, target), "%s is equal to %s.", v, t)

	case types.TagIsMoreThan, types.TagIsLessThan, types.TagIsNoMoreThan, types.TagIsNoLessThan:
		c, ok := order(value, target)
		if !ok {
			return fail(node, tag, fmt.Sprintf("%s cannot be compared with %s.", v, t))
		}
		switch node.Tag {
		case types.TagIsMoreThan:
			return guard(node, resolved, c > 0, "%s is not more than %s.", v, t)
		case types.TagIsLessThan:
			return guard(node, resolved, c < 0, "%s is not less than %s.", v, t)
		case types.TagIsNoMoreThan:
			return guard(node, resolved, c <= 0, "%s is more than %s.", v, t)
		default:
			return guard(node, resolved, c >= 0, "%s is less than %s.", v, t)
		}

	case types.TagIsBefore, types.TagIsAfter:
		a, err := toTime(value)
		if err != nil {
			return fail(node, tag, fmt.Sprintf("%s is not a date.", v))
		}
		b, err := toTime(target)
		if err != nil {
			return fail(node, tag, fmt.Sprintf("%s is not a date.", t))
		}
		if node.Tag == types.TagIsBefore {
			return guard(node, resolved, a.Before(b), "%s is not before %s.", v, t)
		}
		return guard(node, resolved, a.After(b), "%s is not after %s.", v, t)

	case types.TagIsMember, types.TagIsNotMember:
		set, ok := target.([]any)
		if !ok {
			return fail(node, tag, fmt.Sprintf("%s is not a list.", t))
		}
		found := member(value, set)
		if node.Tag == types.TagIsMember {
			return guard(node, resolved, found, "%s is not a member of %s.", v, t)
		}
		return guard(node, resolved, !found, "%s is a member of %s.", v, t)

	case types.TagStartsWith:
		vs, ok1 := value.(string)
		ts, ok2 := target.(string)
		return guard(node, resolved, ok1 && ok2 && strings.HasPrefix(vs, ts), "%s does not start with %s.", v, t)
	case types.TagEndsWith:
		vs, ok1 := value.(string)
		ts, ok2 := target.(string)
		return guard(node, resolved, ok1 && ok2 && strings.HasSuffix(vs, ts), "%s does not end with %s.", v, t)

	case types.TagIsLength, types.TagIsLongerThan, types.TagIsShorterThan:
		n, ok := lengthOf(value)
		if !ok {
			return fail(node, tag, fmt.Sprintf("%s has no length.", v))
		}
		want, err := toInt(target)
		if err != nil {
			return fail(node, tag, fmt.Sprintf("%s is not an integer.", t))
		}
		switch node.Tag {
		case types.TagIsLength:
			return guard(node, resolved, n == want, "%s does not have length %d.", v, want)
		case types.TagIsLongerThan:
			return guard(node, resolved, n > want, "%s is not longer than %d.", v, want)
		default:
			return guard(node, resolved, n < want, "%s is not shorter than %d.", v, want)
		}
	}

	return unknownTag(node, node.Tag)
}

// equal performs equality with numeric and date coercion.
// Lists and objects compare element-wise with the same rules.
func equal(a, b types.Value) bool {
	if da, err := toDecimal(a); err == nil {
		if db, err := toDecimal(b); err == nil {
			return da.Cmp(db) == 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		tb, err := toTime(b)
		return err == nil && ta.Equal(tb)
	}
	if tb, ok := b.(time.Time); ok {
		ta, err := toTime(a)
		return err == nil && ta.Equal(tb)
	}

	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, ok := bv[k]
			if !ok || !equal(elem, other) {
				return false
			}
		}
		return true
	case string, bool, nil:
		return a == b
	default:
		return false
	}
}

// order performs three-way comparison (-1/0/1).
// Returns false for incomparable values.
func order(a, b types.Value) (int, bool) {
	if da, err := toDecimal(a); err == nil {
		if db, err := toDecimal(b); err == nil {
			return da.Cmp(db), true
		}
	}
	if ta, err := toTime(a); err == nil {
		if tb, err := toTime(b); err == nil {
			return ta.Compare(tb), true
		}
	}
	as, ok1 := a.(string)
	bs, ok2 := b.(string)
	if ok1 && ok2 {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// member checks if value exists in set using equality semantics.
func member(value types.Value, set []any) bool {
	for _, elem := range set {
		if equal(value, elem) {
			return true
		}
	}
	return false
}
