package types

import (
	"time"

	"github.com/google/uuid"
)

// EvaluationID identifies one recorded evaluation (UUIDv7).
// String alias keeps JSON and database serialization trivial.
type EvaluationID string

// OperandID identifies a stored operand tree (UUIDv7).
type OperandID string

// NewEvaluationID generates a UUIDv7 evaluation identifier.
// Time-ordered IDs keep the evaluation log clustered by insertion time.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewEvaluationID() EvaluationID {
	return EvaluationID(uuid.Must(uuid.NewV7()).String())
}

// NewOperandID generates a UUIDv7 operand identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewOperandID() OperandID {
	return OperandID(uuid.Must(uuid.NewV7()).String())
}

// ParseOperandID validates and converts a string to OperandID.
func ParseOperandID(s string) (OperandID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return OperandID(s), nil
}

// EvaluationIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func EvaluationIDTime(id EvaluationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
