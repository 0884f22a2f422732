// internal/engine/evaluate.go
package engine

import (
	"fmt"
	"log/slog"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Operand evaluation orchestration.
 *
 * Evaluate walks an operand tree depth-first and returns an Either. The
 * dispatcher is a type switch over the closed node set; each family then
 * switches on its tag.
 *
 * Evaluation flow:
 *   1. Depth check (guards programmatically built cycles)
 *   2. Family dispatch: literal, injector, comparator, logical, operator
 *   3. Children resolved before the node's own logic runs
 *   4. Any left is returned (or merged) without running the node's logic
 *
 * Failure handling: nothing escapes as a panic or Go error. Unknown tags,
 * missing operands, and bad parameters all become a left naming the node,
 * marked as configuration errors so no combinator can turn them into a pass.
 *
 * Purity: the tree, the argument and the local values are only read. Same
 * inputs give an identical Either, so results can be cached by callers.
 */

// env carries per-evaluation inputs down the tree.
type env struct {
	arg    types.Value
	locals types.LocalValues
	depth  int
}

// Evaluate resolves op against the evaluation argument and local values.
func (e *Engine) Evaluate(op types.Operand, arg types.Value, locals types.LocalValues) types.Either {
	result := e.eval(op, env{arg: arg, locals: locals})
	if e.logger != nil {
		e.logger.Debug("operand evaluated",
			slog.String("tag", string(types.TagOf(op))),
			slog.Bool("ok", result.IsRight()),
			slog.Int("errors", len(result.Errors())))
	}
	return result
}

// eval is the recursive dispatcher.
func (e *Engine) eval(op types.Operand, env env) types.Either {
	if env.depth >= types.MaxOperandDepth {
		return configFail(op, string(types.TagOf(op)),
			fmt.Sprintf("operand tree exceeds maximum depth of %d.", types.MaxOperandDepth))
	}
	env.depth++

	switch n := op.(type) {
	case nil:
		return configFail(nil, "Evaluate", "missing operand.")
	case types.Literal:
		return types.Right(n.Value)
	case *types.Injector:
		if n == nil {
			return configFail(nil, "Evaluate", "missing operand.")
		}
		return e.inject(n, env)
	case *types.Comparator:
		if n == nil {
			return configFail(nil, "Evaluate", "missing operand.")
		}
		return e.compare(n, env)
	case *types.Logical:
		if n == nil {
			return configFail(nil, "Evaluate", "missing operand.")
		}
		return e.combine(n, env)
	case *types.Operator:
		if n == nil {
			return configFail(nil, "Evaluate", "missing operand.")
		}
		return e.operate(n, env)
	default:
		return configFail(op, "Evaluate", fmt.Sprintf("unsupported operand type %T.", op))
	}
}

// evalOrArgument evaluates op, or yields the evaluation argument when the
// node has no nested operand.
func (e *Engine) evalOrArgument(op types.Operand, env env) types.Either {
	if op == nil {
		return types.Right(env.arg)
	}
	return e.eval(op, env)
}

// fail builds a single-error left.
func fail(node types.Operand, operator, message string) types.Either {
	return types.Left(types.NewError(node, operator, message))
}

// configFail builds a single-error left for a malformed tree. Not and Or
// pass these through instead of treating them as an ordinary failure.
func configFail(node types.Operand, operator, message string) types.Either {
	return types.Left(types.NewConfigError(node, operator, message))
}

// unknownTag reports a tag no built-in or registered handler recognizes.
func unknownTag(node types.Operand, tag types.Tag) types.Either {
	return configFail(node, string(tag), fmt.Sprintf("unknown operator %q.", string(tag)))
}

// checkPlaces bounds a decimalPlaces parameter.
func checkPlaces(node types.Operand, places int) types.Either {
	tag := string(types.TagOf(node))
	switch {
	case places < 0:
		return configFail(node, tag, fmt.Sprintf("decimal places must not be negative, got %d.", places))
	case places > types.MaxDecimalPlaces:
		return configFail(node, tag, fmt.Sprintf("decimal places must be at most %d.", types.MaxDecimalPlaces))
	}
	return types.Right(nil)
}
