// internal/engine/coercion.go
package engine

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v2"

	"github.com/site-bender/sitebender-sub007/internal/types"
)

/*
 * Type coercion for operand evaluation.
 *
 * Form values arrive as strings more often than not, so comparisons and
 * arithmetic coerce their inputs instead of requiring exact dynamic types.
 *
 * Type modes:
 *   - decimal: Strict - numbers and numeric strings, rejects booleans
 *   - text: Lenient - everything renders to a string
 *   - boolean: Strict - bool only, "true" is not true
 *   - date: Strict - time.Time or a string in one of dateLayouts
 *
 * Numbers use apd decimals with 34 significant digits and half-up rounding,
 * so money-shaped input ("0.10" + "0.20") stays exact. Results convert back to
 * the canonical json.Number form.
 */

// apdCtx is the decimal context shared by all arithmetic.
var apdCtx = newDecimalContext()

func newDecimalContext() apd.Context {
	ctx := apd.BaseContext
	ctx.Precision = 34
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}

// dateLayouts are tried in order when coercing strings to dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// toDecimal converts value to a finite decimal.
// Accepts json.Number, float64, int, int64, and numeric strings (trimmed).
// Booleans, NaN and infinities return ErrCoercionFailed.
func toDecimal(value types.Value) (*apd.Decimal, error) {
	var s string
	switch v := value.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	case float64, float32, int, int64, int32:
		s = types.FormatValue(v)
	default:
		return nil, types.ErrCoercionFailed
	}
	if s == "" {
		return nil, types.ErrCoercionFailed
	}
	d, _, err := apd.NewFromString(s)
	if err != nil || d.Form != apd.Finite {
		return nil, types.ErrCoercionFailed
	}
	return d, nil
}

// fromDecimal converts a decimal result to the canonical json.Number form.
func fromDecimal(d *apd.Decimal) json.Number {
	if d.Sign() == 0 {
		// apd keeps the sign of zero; -0 is not a useful form value
		d.Negative = false
	}
	return json.Number(d.Text('f'))
}

// toInt converts value to an int if it is integral.
func toInt(value types.Value) (int, error) {
	d, err := toDecimal(value)
	if err != nil {
		return 0, err
	}
	var frac apd.Decimal
	if _, err := apdCtx.Rem(&frac, d, apd.New(1, 0)); err != nil || frac.Sign() != 0 {
		return 0, types.ErrCoercionFailed
	}
	var whole apd.Decimal
	if _, err := apdCtx.RoundToIntegralValue(&whole, d); err != nil {
		return 0, types.ErrCoercionFailed
	}
	i, err := whole.Int64()
	if err != nil {
		return 0, types.ErrCoercionFailed
	}
	return int(i), nil
}

// toText renders value as a string for text operations.
// Lenient mode: accepts any type.
func toText(value types.Value) string {
	if value == nil {
		return ""
	}
	return types.FormatValue(value)
}

// toBool validates value is a bool.
// Strict mode: no string-to-boolean coercion (avoids "true" vs 1 ambiguity).
func toBool(value types.Value) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, types.ErrCoercionFailed
	}
	return b, nil
}

// toTime converts value to a time.Time.
func toTime(value types.Value) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, types.ErrCoercionFailed
}

// lengthOf returns the length of a string (in runes), list or object.
func lengthOf(value types.Value) (int, bool) {
	switch v := value.(type) {
	case string:
		return len([]rune(v)), true
	case []any:
		return len(v), true
	case map[string]any:
		return len(v), true
	default:
		return 0, false
	}
}
