package types

import (
	"encoding/json"
	"errors"
)

/*
 * Either result container.
 *
 * Every evaluation step returns an Either: a left carrying an ordered,
 * non-empty sequence of AdaptiveError, or a right carrying the resolved
 * Value. Never both, never neither.
 *
 * Non-emptiness of left is enforced by the constructor signature: Left takes
 * a mandatory first error. The zero Either is right(nil).
 *
 * Callers inspect the value only after IsRight and the errors only after
 * IsLeft; the accessors report presence instead of panicking so nothing
 * escapes the evaluation boundary.
 */

// Either is the success/failure result of an evaluation step.
type Either struct {
	left  []AdaptiveError
	right Value
}

// Right wraps a successful value.
func Right(v Value) Either {
	return Either{right: v}
}

// Left wraps one or more failures in discovery order.
func Left(first AdaptiveError, rest ...AdaptiveError) Either {
	errs := make([]AdaptiveError, 0, 1+len(rest))
	errs = append(errs, first)
	errs = append(errs, rest...)
	return Either{left: errs}
}

// IsLeft reports whether e carries failures.
func (e Either) IsLeft() bool {
	return len(e.left) > 0
}

// IsRight reports whether e carries a value.
func (e Either) IsRight() bool {
	return len(e.left) == 0
}

// Value returns the right value and true, or nil and false for a left.
func (e Either) Value() (Value, bool) {
	if e.IsLeft() {
		return nil, false
	}
	return e.right, true
}

// Errors returns a copy of the left sequence, or nil for a right.
func (e Either) Errors() []AdaptiveError {
	if e.IsRight() {
		return nil
	}
	out := make([]AdaptiveError, len(e.left))
	copy(out, e.left)
	return out
}

// HasConfigurationError reports whether any failure in e is a
// configuration error.
func (e Either) HasConfigurationError() bool {
	for _, err := range e.left {
		if err.IsConfiguration() {
			return true
		}
	}
	return false
}

// Concat merges the failures of every left in results, preserving order.
// Returns a right(nil) and false when no result is a left.
func Concat(results ...Either) (Either, bool) {
	var errs []AdaptiveError
	for _, r := range results {
		errs = append(errs, r.left...)
	}
	if len(errs) == 0 {
		return Right(nil), false
	}
	return Either{left: errs}, true
}

type eitherJSON struct {
	Left  []AdaptiveError `json:"left,omitempty"`
	Right *json.RawMessage `json:"right,omitempty"`
}

// MarshalJSON encodes e as {"left": [...]} or {"right": value}.
func (e Either) MarshalJSON() ([]byte, error) {
	if e.IsLeft() {
		return json.Marshal(eitherJSON{Left: e.left})
	}
	raw, err := json.Marshal(e.right)
	if err != nil {
		return nil, err
	}
	msg := json.RawMessage(raw)
	return json.Marshal(eitherJSON{Right: &msg})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (e *Either) UnmarshalJSON(data []byte) error {
	var aux struct {
		Left  []AdaptiveError `json:"left"`
		Right json.RawMessage `json:"right"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Left) > 0 {
		*e = Either{left: aux.Left}
		return nil
	}
	if aux.Right == nil {
		return errors.New("either: neither left nor right present")
	}
	v, err := DecodeValue(aux.Right)
	if err != nil {
		return err
	}
	*e = Right(v)
	return nil
}
