// internal/engine/cost.go
package engine

import "github.com/site-bender/sitebender-sub007/internal/types"

/*
 * Cost model for operand trees.
 *
 * Every node has a base cost; a tree costs the sum of its nodes. Compile
 * rejects trees above MaxOperandCost so a stored operand cannot make an
 * evaluation arbitrarily expensive.
 *
 * Injector cost: lookup_cost * 8^wildcards, where lookup_cost is
 * CostLookupPerSegment per key segment. 8^n reflects worst-case fanout per
 * wildcard; with MaxNestedWildcards=2 the ceiling is 64x.
 *
 * Comparator and operator figures follow how much work the predicate does:
 * type checks are near free, regular expressions and locale printers are
 * the expensive end.
 */

const (
	CostLiteral  = 1
	CostConstant = 1
	CostLogical  = 1

	// Comparator base costs
	CostTypeGuard = 1
	CostLexical   = 5
	CostEquality  = 5
	CostOrdering  = 7
	CostMember    = 8
	CostAffix     = 10
	CostLength    = 5
	CostPattern   = 48

	// Operator base costs
	CostArithmetic = 7
	CostText       = 10
	CostFormat     = 48

	// Unknown and custom tags
	CostCustom = 48

	// Field lookup cost per key segment
	CostLookupPerSegment = 128
	CostLookupRoot       = 1
)

// CalculateCost computes the summed cost of a tree. Missing nodes cost
// nothing; Compile rejects them separately.
func CalculateCost(op types.Operand) int {
	switch n := op.(type) {
	case nil:
		return 0
	case types.Literal:
		return CostLiteral
	case *types.Injector:
		if n == nil {
			return 0
		}
		return injectorCost(n)
	case *types.Comparator:
		if n == nil {
			return 0
		}
		return comparatorCost(n.Tag) + CalculateCost(n.Operand) + CalculateCost(n.Test)
	case *types.Logical:
		if n == nil {
			return 0
		}
		cost := CostLogical
		for _, child := range n.Operands {
			cost += CalculateCost(child)
		}
		return cost
	case *types.Operator:
		if n == nil {
			return 0
		}
		cost := operatorCost(n.Tag) + CalculateCost(n.Operand)
		for _, child := range n.Operands {
			cost += CalculateCost(child)
		}
		return cost
	default:
		return CostCustom
	}
}

// injectorCost returns lookup_cost * 8^wildcards.
func injectorCost(n *types.Injector) int {
	if n.Tag == types.TagConstant {
		return CostConstant
	}
	path, err := types.ParsePath(n.Path)
	if err != nil {
		return CostLookupPerSegment
	}
	lookupCost := CostLookupRoot
	wildcardCount := 0
	for _, seg := range path {
		if seg.Key != "" {
			lookupCost += CostLookupPerSegment
		}
		if seg.Wildcard {
			wildcardCount++
		}
	}
	execMult := 1
	for i := 0; i < wildcardCount; i++ {
		execMult *= 8
	}
	return lookupCost * execMult
}

// comparatorCost maps a comparator tag to its base cost.
func comparatorCost(tag types.Tag) int {
	switch tag {
	case types.TagIsString, types.TagIsBoolean, types.TagIsEmpty, types.TagIsNotEmpty,
		types.TagIsTrue, types.TagIsFalse:
		return CostTypeGuard
	case types.TagIsInteger, types.TagIsNumber, types.TagIsRealNumber, types.TagIsPrecisionNumber,
		types.TagIsDate:
		return CostLexical
	case types.TagIsEqualTo, types.TagIsUnequalTo:
		return CostEquality
	case types.TagIsMoreThan, types.TagIsLessThan, types.TagIsNoMoreThan, types.TagIsNoLessThan,
		types.TagIsBefore, types.TagIsAfter:
		return CostOrdering
	case types.TagIsMember, types.TagIsNotMember:
		return CostMember
	case types.TagStartsWith, types.TagEndsWith:
		return CostAffix
	case types.TagIsLength, types.TagIsLongerThan, types.TagIsShorterThan:
		return CostLength
	case types.TagMatches, types.TagDoesNotMatch:
		return CostPattern
	default:
		return CostCustom
	}
}

// operatorCost maps an operator tag to its base cost.
func operatorCost(tag types.Tag) int {
	switch tag {
	case types.TagConcatenate, types.TagTemplate, types.TagUppercase, types.TagLowercase,
		types.TagTrim, types.TagReplace, types.TagLength:
		return CostText
	case types.TagFormatNumber, types.TagFormatPercent, types.TagFormatCurrency, types.TagFormatDate:
		return CostFormat
	default:
		if types.FamilyOf(tag) == types.FamilyOperator {
			return CostArithmetic
		}
		return CostCustom
	}
}
