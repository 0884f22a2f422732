// internal/engine/operators.go
package engine

import (
	"fmt"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Operator dispatch.
 *
 * Operators resolve their children (Operand first, then Operands in order)
 * and compute a new value. Every child is evaluated; if any fails, the
 * concatenated child lefts are returned and the operator itself never runs.
 * An operator with no children applies to the evaluation argument.
 *
 * Families:
 *   - arithmetic.go: decimal arithmetic and rounding
 *   - strings.go: concatenation, templates, case, trimming, replace, length
 *   - format.go: locale-aware number, percent, currency and date output
 */

// operate evaluates an operator node.
func (e *Engine) operate(node *types.Operator, env env) types.Either {
	args, failed := e.resolveChildren(node, env)
	if failed.IsLeft() {
		return failed
	}

	switch node.Tag {
	case types.TagAdd, types.TagSubtract, types.TagMultiply, types.TagDivide,
		types.TagRemainder, types.TagPower, types.TagNegate, types.TagAbsoluteValue,
		types.TagMin, types.TagMax, types.TagAverage,
		types.TagRound, types.TagFloor, types.TagCeiling, types.TagTruncate:
		return arithmetic(node, args)
	case types.TagConcatenate, types.TagTemplate, types.TagUppercase, types.TagLowercase,
		types.TagTrim, types.TagReplace, types.TagLength:
		return e.text(node, args)
	case types.TagFormatNumber, types.TagFormatPercent, types.TagFormatCurrency, types.TagFormatDate:
		return e.format(node, args)
	}

	if fn, ok := e.operators[node.Tag]; ok {
		return fn(node, args)
	}
	return unknownTag(node, node.Tag)
}

// resolveChildren evaluates every child of node. The returned Either is a
// left carrying all child failures, or right(nil) when all succeeded.
func (e *Engine) resolveChildren(node *types.Operator, env env) ([]types.Value, types.Either) {
	children := make([]types.Operand, 0, 1+len(node.Operands))
	if node.Operand != nil {
		children = append(children, node.Operand)
	}
	children = append(children, node.Operands...)
	if len(children) == 0 {
		return []types.Value{env.arg}, types.Right(nil)
	}

	args := make([]types.Value, 0, len(children))
	var failures []types.Either
	for _, child := range children {
		result := e.eval(child, env)
		if result.IsLeft() {
			failures = append(failures, result)
			continue
		}
		v, _ := result.Value()
		args = append(args, v)
	}
	if merged, failed := types.Concat(failures...); failed {
		return nil, merged
	}
	return args, types.Right(nil)
}

// expectArgs reports an arity failure unless len(args) == n.
func expectArgs(node *types.Operator, args []types.Value, n int) (types.Either, bool) {
	if len(args) == n {
		return types.Either{}, true
	}
	return configFail(node, string(node.Tag), fmt.Sprintf("expects %d operand(s), got %d.", n, len(args))), false
}

// flatten expands list arguments one level so n-ary operators accept lists.
func flatten(args []types.Value) []types.Value {
	out := make([]types.Value, 0, len(args))
	for _, arg := range args {
		if list, ok := arg.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, arg)
	}
	return out
}
