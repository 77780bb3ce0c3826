package conversion

import (
	"errors"
	"fmt"
)

var ErrPrecondition = errors.New("conversion preconditions not met")

// PreconditionError explains which entry check failed. No side effects have
// happened by the time one is returned.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("conversion precondition failed: %s", e.Reason)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }
