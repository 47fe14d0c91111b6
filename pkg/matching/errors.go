package matching

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a looked-up trial is not in the catalog.
type NotFoundError struct {
	TrialID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("trial %s not found", e.TrialID)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
