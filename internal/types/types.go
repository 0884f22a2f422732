// Package types provides the domain model shared by the evaluation engine and
// the service layer: operand trees, values, the Either result container, and
// the AdaptiveError failure record.
//
// Zero-dependency design: everything except ids.go uses only the standard
// library so the engine can be embedded without pulling in service deps.
// Wire formats (JSON, YAML, structpb) are converted to these types at the
// boundary; the engine never sees raw bytes.
package types

// Resource limits enforced when an operand tree is compiled.
const (
	// MaxOperandDepth bounds recursive descent during evaluation.
	// 32 levels covers deeply nested calculations without risking stack growth.
	MaxOperandDepth = 32

	// MaxOperandCost caps the summed node cost of a single tree.
	// See engine.CalculateCost for the per-node figures.
	MaxOperandCost = 1 << 16

	// MaxPathDepth prevents unbounded traversal in injector paths.
	// 16 segments handles deeply nested form values ($.a.b.c...).
	MaxPathDepth = 16

	// MaxNestedWildcards limits wildcard expansion in injector paths.
	// 2 wildcards allow patterns like lines[*].items[*].price.
	MaxNestedWildcards = 2

	// MaxMemberValues limits literal set size for IsMember/IsNotMember.
	MaxMemberValues = 64

	// MaxChildOperands limits fan-out of logical and n-ary operator nodes.
	MaxChildOperands = 256

	// MaxDecimalPlaces bounds decimalPlaces on IsPrecisionNumber, Round and
	// the formatting operators. It stays below the regexp repeat limit.
	MaxDecimalPlaces = 100
)
