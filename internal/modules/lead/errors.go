package lead

import (
	"errors"
	"fmt"

	"travelcrm/internal/domain"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrLeadNotFound      = errors.New("lead not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError names the rejected status pair.
type TransitionError struct {
	From domain.LeadStatus
	To   domain.LeadStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %q -> %q", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
