// internal/engine/strings.go
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

var placeholderPattern = regexp.MustCompile(`\{([0-9]+)\}`)

// text evaluates the string operators.
func (e *Engine) text(node *types.Operator, args []types.Value) types.Either {
	tag := string(node.Tag)

	switch node.Tag {
	case types.TagConcatenate:
		args = flatten(args)
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = toText(arg)
		}
		return types.Right(strings.Join(parts, node.Separator))

	case types.TagTemplate:
		return template(node, args)

	case types.TagLength:
		if failed, ok := expectArgs(node, args, 1); !ok {
			return failed
		}
		n, ok := lengthOf(args[0])
		if !ok {
			return fail(node, tag, fmt.Sprintf("%s has no length.", types.FormatValue(args[0])))
		}
		return types.Right(types.Number(float64(n)))
	}

	if failed, ok := expectArgs(node, args, 1); !ok {
		return failed
	}
	s, ok := args[0].(string)
	if !ok {
		return fail(node, tag, fmt.Sprintf("%s is not a string.", types.FormatValue(args[0])))
	}

	switch node.Tag {
	case types.TagUppercase, types.TagLowercase:
		lang, failed := e.language(node)
		if failed.IsLeft() {
			return failed
		}
		if node.Tag == types.TagUppercase {
			return types.Right(cases.Upper(lang).String(s))
		}
		return types.Right(cases.Lower(lang).String(s))
	case types.TagTrim:
		return types.Right(strings.TrimSpace(s))
	case types.TagReplace:
		re, err := e.pattern(node.Pattern, "")
		if err != nil {
			return configFail(node, tag, fmt.Sprintf("%q is not a valid pattern.", node.Pattern))
		}
		return types.Right(re.ReplaceAllString(s, node.Replacement))
	}
	return unknownTag(node, node.Tag)
}

// template substitutes {0}, {1}, ... with the rendered arguments.
func template(node *types.Operator, args []types.Value) types.Either {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(node.Template, func(m string) string {
		i, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || i >= len(args) {
			missing = append(missing, m)
			return m
		}
		return toText(args[i])
	})
	if len(missing) > 0 {
		return configFail(node, string(node.Tag),
			fmt.Sprintf("template references missing operand %s.", strings.Join(missing, ", ")))
	}
	return types.Right(out)
}
