// Package calculator implements the compound interest and retirement
// projection calculators. All monetary outputs are rounded to cents.
package calculator

import "fmt"

// ValidationError reports a rejected calculator input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidArg(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
