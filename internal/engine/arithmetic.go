// internal/engine/arithmetic.go
package engine

import (
	"fmt"

	"github.com/cockroachdb/apd/v2"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

type numFunc func(z, x, y *apd.Decimal) (apd.Condition, error)

type unaryFunc func(z, x *apd.Decimal) (apd.Condition, error)

// roundingCtx holds the decimal context used by each rounding operator.
var roundingCtx = map[types.Tag]*apd.Context{}

func init() {
	for tag, rounding := range map[types.Tag]func(*apd.Context){
		types.TagRound:    func(c *apd.Context) { c.Rounding = apd.RoundHalfUp },
		types.TagFloor:    func(c *apd.Context) { c.Rounding = apd.RoundFloor },
		types.TagCeiling:  func(c *apd.Context) { c.Rounding = apd.RoundCeiling },
		types.TagTruncate: func(c *apd.Context) { c.Rounding = apd.RoundDown },
	} {
		ctx := apdCtx
		rounding(&ctx)
		roundingCtx[tag] = &ctx
	}
}

// arithmetic evaluates the decimal operators.
// Add, Multiply, Min, Max and Average accept lists as arguments.
func arithmetic(node *types.Operator, args []types.Value) types.Either {
	switch node.Tag {
	case types.TagAdd, types.TagMultiply, types.TagMin, types.TagMax, types.TagAverage:
		args = flatten(args)
		if len(args) == 0 {
			return fail(node, string(node.Tag), "no operands.")
		}
	case types.TagSubtract, types.TagDivide, types.TagRemainder, types.TagPower:
		if failed, ok := expectArgs(node, args, 2); !ok {
			return failed
		}
	default:
		if failed, ok := expectArgs(node, args, 1); !ok {
			return failed
		}
	}

	nums, failed := decimalArgs(node, args)
	if failed.IsLeft() {
		return failed
	}

	switch node.Tag {
	case types.TagAdd:
		return fold(node, nums, apdCtx.Add)
	case types.TagMultiply:
		return fold(node, nums, apdCtx.Mul)
	case types.TagSubtract:
		return fold(node, nums, apdCtx.Sub)
	case types.TagDivide, types.TagRemainder:
		if nums[1].Sign() == 0 {
			return fail(node, string(node.Tag), "division by zero.")
		}
		if node.Tag == types.TagDivide {
			return fold(node, nums, apdCtx.Quo)
		}
		return fold(node, nums, apdCtx.Rem)
	case types.TagPower:
		return fold(node, nums, apdCtx.Pow)
	case types.TagNegate:
		return apply(node, nums[0], apdCtx.Neg)
	case types.TagAbsoluteValue:
		return apply(node, nums[0], apdCtx.Abs)
	case types.TagMin, types.TagMax:
		best := nums[0]
		for _, n := range nums[1:] {
			c := n.Cmp(best)
			if (node.Tag == types.TagMin && c < 0) || (node.Tag == types.TagMax && c > 0) {
				best = n
			}
		}
		return types.Right(fromDecimal(best))
	case types.TagAverage:
		sum, err := reduce(nums, apdCtx.Add)
		if err != nil {
			return fail(node, string(node.Tag), fmt.Sprintf("cannot compute result: %v.", err))
		}
		return fold(node, []*apd.Decimal{sum, apd.New(int64(len(nums)), 0)}, apdCtx.Quo)
	case types.TagRound, types.TagFloor, types.TagCeiling, types.TagTruncate:
		return quantize(node, nums[0], roundingCtx[node.Tag])
	}
	return unknownTag(node, node.Tag)
}

// decimalArgs coerces every argument, reporting each non-number in order.
func decimalArgs(node *types.Operator, args []types.Value) ([]*apd.Decimal, types.Either) {
	nums := make([]*apd.Decimal, 0, len(args))
	var errs []types.AdaptiveError
	for _, arg := range args {
		d, err := toDecimal(arg)
		if err != nil {
			errs = append(errs, types.NewError(node, string(node.Tag),
				fmt.Sprintf("%s is not a number.", types.FormatValue(arg))))
			continue
		}
		nums = append(nums, d)
	}
	if len(errs) > 0 {
		return nil, types.Left(errs[0], errs[1:]...)
	}
	return nums, types.Right(nil)
}

// fold applies fn left to right across nums.
func fold(node *types.Operator, nums []*apd.Decimal, fn numFunc) types.Either {
	acc, err := reduce(nums, fn)
	if err != nil {
		return fail(node, string(node.Tag), fmt.Sprintf("cannot compute result: %v.", err))
	}
	return types.Right(fromDecimal(acc))
}

func reduce(nums []*apd.Decimal, fn numFunc) (*apd.Decimal, error) {
	acc := new(apd.Decimal).Set(nums[0])
	for _, n := range nums[1:] {
		if _, err := fn(acc, acc, n); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func apply(node *types.Operator, x *apd.Decimal, fn unaryFunc) types.Either {
	d := new(apd.Decimal)
	if _, err := fn(d, x); err != nil {
		return fail(node, string(node.Tag), fmt.Sprintf("cannot compute result: %v.", err))
	}
	return types.Right(fromDecimal(d))
}

// quantize rounds x to the node's decimal places (default 0) under ctx.
func quantize(node *types.Operator, x *apd.Decimal, ctx *apd.Context) types.Either {
	places := 0
	if node.DecimalPlaces != nil {
		places = *node.DecimalPlaces
	}
	if failed := checkPlaces(node, places); failed.IsLeft() {
		return failed
	}
	d := new(apd.Decimal)
	if _, err := ctx.Quantize(d, x, int32(-places)); err != nil {
		return fail(node, string(node.Tag), fmt.Sprintf("cannot round %s: %v.", x.Text('f'), err))
	}
	return types.Right(fromDecimal(d))
}
