// internal/engine/comparators.go
package engine

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Comparator evaluation.
 *
 * A comparator is a gate: it resolves its operand, applies a predicate, and
 * on success returns the resolved Either unchanged so parent calculation
 * nodes can use the value. On failure it returns a single AdaptiveError
 * naming the comparator.
 *
 * Comparators:
 *   - Lexical guards: IsInteger, IsNumber, IsRealNumber, IsPrecisionNumber
 *   - Type guards: IsString, IsBoolean, IsDate, IsEmpty, IsNotEmpty,
 *     IsTrue, IsFalse
 *   - Binary: IsEqualTo ... IsShorterThan, compared against Test
 *   - Pattern: Matches, DoesNotMatch
 *
 * Lexical guards test the rendered form of the value, so "42" and the
 * number 42 are both integers while "4.0" is not.
 *
 * A comparator with no operand tests the evaluation argument.
 */

var (
	integerPattern = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)
	realPattern    = regexp.MustCompile(`^[-+]?([0-9]+([.][0-9]*)?|[.][0-9]+)$`)
)

// precisionPattern returns the IsPrecisionNumber pattern for n decimal
// places from the engine's pattern cache. n must already be bounded.
func (e *Engine) precisionPattern(n int) (*regexp.Regexp, error) {
	return e.pattern(`^([-+]?)(0|[1-9][0-9]*)([.][0-9]{0,`+strconv.Itoa(n)+`})?$`, "")
}

// compare resolves the comparator's operand and applies its predicate.
func (e *Engine) compare(node *types.Comparator, env env) types.Either {
	resolved := e.evalOrArgument(node.Operand, env)
	if resolved.IsLeft() {
		return resolved
	}
	value, _ := resolved.Value()

	if isBinaryComparator(node.Tag) {
		if node.Test == nil {
			return configFail(node, string(node.Tag), "missing test operand.")
		}
		test := e.eval(node.Test, env)
		if test.IsLeft() {
			return test
		}
		target, _ := test.Value()
		return compareBinary(node, value, target, resolved)
	}

	switch node.Tag {
	case types.TagIsInteger:
		return guard(node, resolved, integerPattern.MatchString(types.FormatValue(value)),
			"%s is not an integer.", types.FormatValue(value))
	case types.TagIsNumber:
		return guard(node, resolved, isRealNumber(value),
			"%s is not a number.", types.FormatValue(value))
	case types.TagIsRealNumber:
		return guard(node, resolved, isRealNumber(value),
			"%s is not a real number.", types.FormatValue(value))
	case types.TagIsPrecisionNumber:
		return e.isPrecisionNumber(node, value, resolved)
	case types.TagIsString:
		_, ok := value.(string)
		return guard(node, resolved, ok, "%s is not a string.", types.FormatValue(value))
	case types.TagIsBoolean:
		_, err := toBool(value)
		return guard(node, resolved, err == nil, "%s is not a boolean.", types.FormatValue(value))
	case types.TagIsDate:
		_, err := toTime(value)
		return guard(node, resolved, err == nil, "%s is not a date.", types.FormatValue(value))
	case types.TagIsEmpty:
		return guard(node, resolved, isEmpty(value), "%s is not empty.", types.FormatValue(value))
	case types.TagIsNotEmpty:
		return guard(node, resolved, !isEmpty(value), "value is empty.")
	case types.TagIsTrue:
		b, err := toBool(value)
		return guard(node, resolved, err == nil && b, "%s is not true.", types.FormatValue(value))
	case types.TagIsFalse:
		b, err := toBool(value)
		return guard(node, resolved, err == nil && !b, "%s is not false.", types.FormatValue(value))

	case types.TagMatches, types.TagDoesNotMatch:
		re, err := e.pattern(node.Pattern, node.Flags)
		if err != nil {
			return configFail(node, string(node.Tag), fmt.Sprintf("%q is not a valid pattern.", node.Pattern))
		}
		s, ok := value.(string)
		if !ok {
			s = types.FormatValue(value)
		}
		if node.Tag == types.TagMatches {
			return guard(node, resolved, re.MatchString(s), "%s does not match %s.", s, node.Pattern)
		}
		return guard(node, resolved, !re.MatchString(s), "%s matches %s.", s, node.Pattern)
	}

	if fn, ok := e.comparators[node.Tag]; ok {
		return fn(node, value, resolved)
	}
	return unknownTag(node, node.Tag)
}

// guard returns resolved when ok holds, otherwise a left with the formatted message.
func guard(node *types.Comparator, resolved types.Either, ok bool, format string, args ...any) types.Either {
	if ok {
		return resolved
	}
	return fail(node, string(node.Tag), fmt.Sprintf(format, args...))
}

// isRealNumber is the shared predicate behind IsNumber and IsRealNumber.
func isRealNumber(value types.Value) bool {
	return realPattern.MatchString(types.FormatValue(value))
}

func (e *Engine) isPrecisionNumber(node *types.Comparator, value types.Value, resolved types.Either) types.Either {
	n := node.DecimalPlaces
	if failed := checkPlaces(node, n); failed.IsLeft() {
		return failed
	}
	re, err := e.precisionPattern(n)
	if err != nil {
		return configFail(node, string(node.Tag), fmt.Sprintf("cannot check %d decimal places: %v.", n, err))
	}
	s := types.FormatValue(value)
	ok := isRealNumber(value) && re.MatchString(s)
	return guard(node, resolved, ok, "%s is not a precision number of up to %d decimal places.", s, n)
}

// isEmpty reports whether value is null, "", an empty list or an empty object.
func isEmpty(value types.Value) bool {
	if value == nil {
		return true
	}
	n, ok := lengthOf(value)
	return ok && n == 0
}
