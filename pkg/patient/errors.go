package patient

import (
	"errors"
	"fmt"
)

// ValidationError reports one malformed or out-of-range input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// FieldErrors flattens a joined validation error into its field errors, in
// the order they were found.
func FieldErrors(err error) []ValidationError {
	switch e := err.(type) {
	case nil:
		return nil
	case ValidationError:
		return []ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, FieldErrors(inner)...)
		}
		return out
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return []ValidationError{ve}
	}
	return nil
}
