// internal/engine/compile.go
package engine

import (
	"fmt"
	"sort"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Operand compilation and validation.
 *
 * Compile checks an operand tree before it is stored or served, moving
 * configuration errors from evaluation time to authoring time. Evaluation
 * still reports the same problems as lefts for trees that skip this step.
 *
 * Compilation workflow:
 *   1. Walk the tree: known tags, arity, parameters, depth, fan-out
 *   2. Validate injector paths (depth, wildcards) and patterns
 *   3. Calculate total cost using the cost model
 *   4. Record the distinct tags used, sorted, for storage and diagnostics
 *
 * Errors are sentinel types.Err* values wrapped with the node location.
 */

// CompiledOperand is a validated operand tree.
type CompiledOperand struct {
	Root  types.Operand
	Cost  int
	Depth int
	Tags  []types.Tag // distinct tags, sorted
}

// Compile validates op against the built-in vocabulary.
func Compile(op types.Operand) (*CompiledOperand, error) {
	return defaultEngine.Compile(op)
}

// Compile validates op, accepting tags registered on e.
func (e *Engine) Compile(op types.Operand) (*CompiledOperand, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: missing operand", types.ErrInvalidOperand)
	}
	c := &compiler{engine: e, tags: make(map[types.Tag]struct{})}
	if err := c.walk(op, 1, "$"); err != nil {
		return nil, err
	}

	cost := CalculateCost(op)
	if cost > types.MaxOperandCost {
		return nil, fmt.Errorf("%w: cost %d exceeds %d", types.ErrOperandTooCostly, cost, types.MaxOperandCost)
	}

	tags := make([]types.Tag, 0, len(c.tags))
	for tag := range c.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	return &CompiledOperand{
		Root:  op,
		Cost:  cost,
		Depth: c.maxDepth,
		Tags:  tags,
	}, nil
}

type compiler struct {
	engine   *Engine
	tags     map[types.Tag]struct{}
	maxDepth int
}

// walk validates one node and recurses into its children.
// loc is a JSON-path-like location used in error messages.
func (c *compiler) walk(op types.Operand, depth int, loc string) error {
	if depth > types.MaxOperandDepth {
		return fmt.Errorf("%w: at %s", types.ErrOperandTooDeep, loc)
	}
	if depth > c.maxDepth {
		c.maxDepth = depth
	}

	switch n := op.(type) {
	case nil:
		return fmt.Errorf("%w: missing operand at %s", types.ErrInvalidOperand, loc)
	case types.Literal:
		return nil
	case *types.Injector:
		if n == nil {
			return fmt.Errorf("%w: missing operand at %s", types.ErrInvalidOperand, loc)
		}
		c.tags[n.Tag] = struct{}{}
		return c.injector(n, loc)
	case *types.Comparator:
		if n == nil {
			return fmt.Errorf("%w: missing operand at %s", types.ErrInvalidOperand, loc)
		}
		c.tags[n.Tag] = struct{}{}
		return c.comparator(n, depth, loc)
	case *types.Logical:
		if n == nil {
			return fmt.Errorf("%w: missing operand at %s", types.ErrInvalidOperand, loc)
		}
		c.tags[n.Tag] = struct{}{}
		return c.logical(n, depth, loc)
	case *types.Operator:
		if n == nil {
			return fmt.Errorf("%w: missing operand at %s", types.ErrInvalidOperand, loc)
		}
		c.tags[n.Tag] = struct{}{}
		return c.operator(n, depth, loc)
	default:
		return fmt.Errorf("%w: unsupported operand type %T at %s", types.ErrInvalidOperand, op, loc)
	}
}

func (c *compiler) comparator(n *types.Comparator, depth int, loc string) error {
	if n.Operand != nil {
		if err := c.walk(n.Operand, depth+1, loc+".operand"); err != nil {
			return err
		}
	}
	if n.Test != nil {
		if err := c.walk(n.Test, depth+1, loc+".test"); err != nil {
			return err
		}
	}

	if types.FamilyOf(n.Tag) != types.FamilyComparator {
		if _, ok := c.engine.comparators[n.Tag]; ok {
			return nil
		}
		return fmt.Errorf("%w: %s at %s", types.ErrUnknownOperator, n.Tag, loc)
	}

	switch n.Tag {
	case types.TagIsPrecisionNumber:
		if err := checkDecimalPlaces(n.Tag, n.DecimalPlaces, loc); err != nil {
			return err
		}
	case types.TagMatches, types.TagDoesNotMatch:
		if _, err := compilePattern(n.Pattern, n.Flags); err != nil {
			return fmt.Errorf("%w: %s at %s: %v", types.ErrInvalidPattern, n.Tag, loc, err)
		}
	}

	if isBinaryComparator(n.Tag) && n.Test == nil {
		return fmt.Errorf("%w: %s requires a test operand at %s", types.ErrArity, n.Tag, loc)
	}
	if n.Tag == types.TagIsMember || n.Tag == types.TagIsNotMember {
		if lit, ok := n.Test.(types.Literal); ok {
			set, ok := lit.Value.([]any)
			if !ok {
				return fmt.Errorf("%w: %s test must be a list at %s", types.ErrInvalidParameter, n.Tag, loc)
			}
			if len(set) > types.MaxMemberValues {
				return fmt.Errorf("%w: %d values at %s", types.ErrTooManyMemberValues, len(set), loc)
			}
		}
	}
	return nil
}

func (c *compiler) logical(n *types.Logical, depth int, loc string) error {
	if types.FamilyOf(n.Tag) != types.FamilyLogical {
		return fmt.Errorf("%w: %s at %s", types.ErrUnknownOperator, n.Tag, loc)
	}
	if len(n.Operands) > types.MaxChildOperands {
		return fmt.Errorf("%w: %s has %d at %s", types.ErrTooManyOperands, n.Tag, len(n.Operands), loc)
	}
	switch n.Tag {
	case types.TagNot:
		if len(n.Operands) != 1 {
			return fmt.Errorf("%w: Not expects 1 operand, got %d at %s", types.ErrArity, len(n.Operands), loc)
		}
	case types.TagOr:
		if len(n.Operands) == 0 {
			return fmt.Errorf("%w: Or expects at least 1 operand at %s", types.ErrArity, loc)
		}
	}
	for i, child := range n.Operands {
		if err := c.walk(child, depth+1, fmt.Sprintf("%s.operands[%d]", loc, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) operator(n *types.Operator, depth int, loc string) error {
	children := len(n.Operands)
	if n.Operand != nil {
		children++
		if err := c.walk(n.Operand, depth+1, loc+".operand"); err != nil {
			return err
		}
	}
	if children > types.MaxChildOperands {
		return fmt.Errorf("%w: %s has %d at %s", types.ErrTooManyOperands, n.Tag, children, loc)
	}
	for i, child := range n.Operands {
		if err := c.walk(child, depth+1, fmt.Sprintf("%s.operands[%d]", loc, i)); err != nil {
			return err
		}
	}

	if types.FamilyOf(n.Tag) != types.FamilyOperator {
		if _, ok := c.engine.operators[n.Tag]; ok {
			return nil
		}
		return fmt.Errorf("%w: %s at %s", types.ErrUnknownOperator, n.Tag, loc)
	}

	switch n.Tag {
	case types.TagSubtract, types.TagDivide, types.TagRemainder, types.TagPower:
		if children != 2 {
			return fmt.Errorf("%w: %s expects 2 operands, got %d at %s", types.ErrArity, n.Tag, children, loc)
		}
	case types.TagAdd, types.TagMultiply, types.TagMin, types.TagMax, types.TagAverage,
		types.TagConcatenate, types.TagTemplate:
	default:
		if children > 1 {
			return fmt.Errorf("%w: %s expects 1 operand, got %d at %s", types.ErrArity, n.Tag, children, loc)
		}
	}

	if n.DecimalPlaces != nil {
		if err := checkDecimalPlaces(n.Tag, *n.DecimalPlaces, loc); err != nil {
			return err
		}
	}
	if n.Locale != "" {
		if _, err := language.Parse(n.Locale); err != nil {
			return fmt.Errorf("%w: %s.locale %q at %s", types.ErrInvalidParameter, n.Tag, n.Locale, loc)
		}
	}
	switch n.Tag {
	case types.TagReplace:
		if _, err := compilePattern(n.Pattern, ""); err != nil {
			return fmt.Errorf("%w: %s at %s: %v", types.ErrInvalidPattern, n.Tag, loc, err)
		}
	case types.TagTemplate:
		if n.Template == "" {
			return fmt.Errorf("%w: %s.template is empty at %s", types.ErrInvalidParameter, n.Tag, loc)
		}
	case types.TagFormatCurrency:
		if _, err := currency.ParseISO(n.Currency); err != nil {
			return fmt.Errorf("%w: %s.currency %q at %s", types.ErrInvalidParameter, n.Tag, n.Currency, loc)
		}
	}
	return nil
}

func (c *compiler) injector(n *types.Injector, loc string) error {
	switch n.Tag {
	case types.TagConstant:
		return nil
	case types.TagFromLocalValues:
		if n.Name == "" {
			return fmt.Errorf("%w: %s.name is empty at %s", types.ErrInvalidParameter, n.Tag, loc)
		}
	case types.TagFromArgument:
	default:
		return fmt.Errorf("%w: %s at %s", types.ErrUnknownOperator, n.Tag, loc)
	}
	path, err := types.ParsePath(n.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", loc, err)
	}
	if err := types.ValidatePath(path); err != nil {
		return fmt.Errorf("%s: %w", loc, err)
	}
	return nil
}

func checkDecimalPlaces(tag types.Tag, places int, loc string) error {
	switch {
	case places < 0:
		return fmt.Errorf("%w: %s.decimalPlaces must not be negative at %s", types.ErrInvalidParameter, tag, loc)
	case places > types.MaxDecimalPlaces:
		return fmt.Errorf("%w: %s.decimalPlaces must be at most %d at %s", types.ErrInvalidParameter, tag, types.MaxDecimalPlaces, loc)
	}
	return nil
}

// isBinaryComparator reports whether tag compares against a Test operand.
func isBinaryComparator(tag types.Tag) bool {
	switch tag {
	case types.TagIsEqualTo, types.TagIsUnequalTo,
		types.TagIsMoreThan, types.TagIsLessThan, types.TagIsNoMoreThan, types.TagIsNoLessThan,
		types.TagIsBefore, types.TagIsAfter,
		types.TagIsMember, types.TagIsNotMember,
		types.TagStartsWith, types.TagEndsWith,
		types.TagIsLength, types.TagIsLongerThan, types.TagIsShorterThan:
		return true
	default:
		return false
	}
}
