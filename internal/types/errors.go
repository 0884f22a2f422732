package types

import (
	"encoding/json"
	"errors"
)

// Sentinel errors for configuration-time failures (decode, compile, storage).
// Evaluation failures never use these; they travel as AdaptiveError in a left.
var (
	// ErrInvalidOperand indicates a tree that cannot be decoded into operand nodes.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnknownOperator indicates a tag outside the built-in vocabulary.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrArity indicates a node with the wrong number of child operands.
	ErrArity = errors.New("wrong number of operands")

	// ErrOperandTooDeep indicates nesting beyond MaxOperandDepth.
	ErrOperandTooDeep = errors.New("operand tree exceeds maximum depth")

	// ErrOperandTooCostly indicates a tree whose cost exceeds MaxOperandCost.
	ErrOperandTooCostly = errors.New("operand tree exceeds maximum cost")

	// ErrTooManyOperands indicates fan-out beyond MaxChildOperands.
	ErrTooManyOperands = errors.New("node has too many operands")

	// ErrPathTooDeep indicates an injector path exceeds MaxPathDepth.
	ErrPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrTooManyWildcards indicates an injector path exceeds MaxNestedWildcards.
	ErrTooManyWildcards = errors.New("field path has too many wildcards")

	// ErrInvalidPath indicates an injector path that does not parse.
	ErrInvalidPath = errors.New("invalid field path")

	// ErrTooManyMemberValues indicates an IsMember set exceeds MaxMemberValues.
	ErrTooManyMemberValues = errors.New("member set has too many values")

	// ErrInvalidPattern indicates a Matches/Replace pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrInvalidParameter indicates a node parameter outside its domain.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrFieldNotFound indicates a field path could not be resolved.
	ErrFieldNotFound = errors.New("field not found")

	// ErrCoercionFailed indicates type coercion failed.
	ErrCoercionFailed = errors.New("type coercion failed")

	// ErrOperandNotFound indicates no stored operand matches the lookup.
	ErrOperandNotFound = errors.New("operand not found")
)

// ErrorKind tells a value that failed a check apart from a tree that cannot
// be evaluated at all.
type ErrorKind int

const (
	// KindValidation is a value that did not satisfy a node.
	KindValidation ErrorKind = iota
	// KindConfiguration is a malformed tree: unknown tag, missing operand,
	// depth overflow or a parameter outside its domain.
	KindConfiguration
)

func (k ErrorKind) String() string {
	if k == KindConfiguration {
		return "configuration"
	}
	return "validation"
}

// AdaptiveError records a single evaluation failure: the node that failed,
// the operator name, and a human-readable message.
type AdaptiveError struct {
	Operand  Operand
	Operator string
	Message  string
	Kind     ErrorKind
}

// NewError builds an AdaptiveError. Pure and deterministic.
func NewError(node Operand, operator string, message string) AdaptiveError {
	return AdaptiveError{
		Operand:  node,
		Operator: operator,
		Message:  message,
	}
}

// NewConfigError builds an AdaptiveError of KindConfiguration.
func NewConfigError(node Operand, operator string, message string) AdaptiveError {
	e := NewError(node, operator, message)
	e.Kind = KindConfiguration
	return e
}

// IsConfiguration reports whether e describes a malformed tree.
func (e AdaptiveError) IsConfiguration() bool {
	return e.Kind == KindConfiguration
}

// Error implements the error interface so failures can be logged or wrapped.
func (e AdaptiveError) Error() string {
	return e.Operator + ": " + e.Message
}

type adaptiveErrorJSON struct {
	Operator string          `json:"operator"`
	Message  string          `json:"message"`
	Kind     string          `json:"kind,omitempty"`
	Operand  json.RawMessage `json:"operand,omitempty"`
}

// MarshalJSON encodes the error with its operand in tree form.
func (e AdaptiveError) MarshalJSON() ([]byte, error) {
	aux := adaptiveErrorJSON{Operator: e.Operator, Message: e.Message}
	if e.IsConfiguration() {
		aux.Kind = e.Kind.String()
	}
	if e.Operand != nil {
		raw, err := json.Marshal(EncodeOperand(e.Operand))
		if err != nil {
			return nil, err
		}
		aux.Operand = raw
	}
	return json.Marshal(aux)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (e *AdaptiveError) UnmarshalJSON(data []byte) error {
	var aux adaptiveErrorJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var node Operand
	if len(aux.Operand) > 0 {
		op, err := DecodeOperand(aux.Operand)
		if err != nil {
			return err
		}
		node = op
	}
	*e = NewError(node, aux.Operator, aux.Message)
	if aux.Kind == KindConfiguration.String() {
		e.Kind = KindConfiguration
	}
	return nil
}
