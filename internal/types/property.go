package types

import "fmt"

// Property names the role an operand tree plays for a form element.
type Property string

const (
	// PropertyCalculation derives the element's value.
	PropertyCalculation Property = "calculation"
	// PropertyDisplay decides whether the element is shown.
	PropertyDisplay Property = "display"
	// PropertyFormat renders the element's value for display.
	PropertyFormat Property = "format"
	// PropertyValidation checks the element's value.
	PropertyValidation Property = "validation"
)

// ParseProperty validates s as a Property.
func ParseProperty(s string) (Property, error) {
	switch p := Property(s); p {
	case PropertyCalculation, PropertyDisplay, PropertyFormat, PropertyValidation:
		return p, nil
	default:
		return "", fmt.Errorf("%w: property %q (want calculation, display, format or validation)", ErrInvalidParameter, s)
	}
}
