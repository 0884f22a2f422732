// internal/engine/logical.go
package engine

import (
	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Logical combinators.
 *
 * Children are evaluated sequentially, left to right, with the same argument
 * and local values, so error order is deterministic.
 *
 *   - And: right(true) when every child succeeds. Under collect-all every
 *     child runs and all lefts are concatenated; under short-circuit the
 *     first left is returned and later children never run.
 *   - Or: the first right wins and later children never run. When all fail,
 *     their lefts are concatenated. No children is a left.
 *   - Not: exactly one child. A left becomes right(true); a right becomes a
 *     left naming Not.
 *
 * A child left holding a configuration error is returned unchanged by Or
 * and Not. A malformed branch must never read as a failed check that a
 * sibling or a negation can turn into a pass.
 *
 * Collect-all is the default because validation wants every message at once.
 * Display gating only needs the verdict and can opt into short-circuit per
 * node or per engine.
 */

// combine evaluates a logical node.
func (e *Engine) combine(node *types.Logical, env env) types.Either {
	switch node.Tag {
	case types.TagAnd:
		return e.and(node, env)
	case types.TagOr:
		return e.or(node, env)
	case types.TagNot:
		return e.not(node, env)
	default:
		return unknownTag(node, node.Tag)
	}
}

func (e *Engine) and(node *types.Logical, env env) types.Either {
	shortCircuit := node.ShortCircuit || e.policy == PolicyShortCircuit

	var failures []types.Either
	for _, child := range node.Operands {
		result := e.eval(child, env)
		if result.IsRight() {
			continue
		}
		if shortCircuit {
			return result
		}
		failures = append(failures, result)
	}
	if merged, failed := types.Concat(failures...); failed {
		return merged
	}
	return types.Right(true)
}

func (e *Engine) or(node *types.Logical, env env) types.Either {
	if len(node.Operands) == 0 {
		return configFail(node, string(node.Tag), "no operands.")
	}
	failures := make([]types.Either, 0, len(node.Operands))
	for _, child := range node.Operands {
		result := e.eval(child, env)
		if result.IsRight() {
			return types.Right(true)
		}
		if result.HasConfigurationError() {
			return result
		}
		failures = append(failures, result)
	}
	merged, _ := types.Concat(failures...)
	return merged
}

func (e *Engine) not(node *types.Logical, env env) types.Either {
	if len(node.Operands) != 1 {
		return configFail(node, string(node.Tag), "expects exactly one operand.")
	}
	result := e.eval(node.Operands[0], env)
	if result.HasConfigurationError() {
		return result
	}
	if result.IsLeft() {
		return types.Right(true)
	}
	return fail(node, string(node.Tag), "operand unexpectedly succeeded.")
}
