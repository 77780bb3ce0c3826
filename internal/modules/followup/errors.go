package followup

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("follow-up not found")
	ErrNotPending   = errors.New("follow-up is not pending")
	ErrLeadNotFound = errors.New("lead not found")
)
