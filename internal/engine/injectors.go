// internal/engine/injectors.go
package engine

import (
	"errors"
	"fmt"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Injectors bring values into the tree.
 *
 *   - Constant: the node's Value
 *   - FromArgument: the evaluation argument, optionally at Path
 *   - FromLocalValues: LocalValues[Name], optionally at Path
 *
 * Missing data defers to OnMissing: "fail" (default) reports a left naming
 * the field, "null" resolves to right(nil) so later guards such as IsEmpty
 * can decide. A present null value is not missing.
 */

// inject evaluates an injector node.
func (e *Engine) inject(node *types.Injector, env env) types.Either {
	tag := string(node.Tag)

	var root types.Value
	switch node.Tag {
	case types.TagConstant:
		return types.Right(node.Value)
	case types.TagFromArgument:
		root = env.arg
	case types.TagFromLocalValues:
		if node.Name == "" {
			return configFail(node, tag, "missing local value name.")
		}
		v, ok := env.locals.Get(node.Name)
		if !ok {
			return missing(node, node.Name)
		}
		root = v
	default:
		return unknownTag(node, node.Tag)
	}

	if node.Path == "" {
		return types.Right(root)
	}
	path, err := e.path(node.Path)
	if err != nil {
		return configFail(node, tag, fmt.Sprintf("%q is not a valid path.", node.Path))
	}
	value, err := Resolve(path, root)
	if err != nil {
		if errors.Is(err, types.ErrFieldNotFound) {
			return missing(node, fieldName(node))
		}
		return fail(node, tag, fmt.Sprintf("cannot resolve %s: %v.", fieldName(node), err))
	}
	return types.Right(value)
}

// missing applies the node's OnMissing policy.
func missing(node *types.Injector, field string) types.Either {
	if node.OnMissing == types.OnMissingNull {
		return types.Right(nil)
	}
	return fail(node, string(node.Tag), fmt.Sprintf("%s is missing.", field))
}

// fieldName renders the injector's target for messages.
func fieldName(node *types.Injector) string {
	switch {
	case node.Name != "" && node.Path != "":
		return node.Name + "." + node.Path
	case node.Name != "":
		return node.Name
	case node.Path != "":
		return node.Path
	default:
		return "argument"
	}
}
