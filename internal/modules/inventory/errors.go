package inventory

import "errors"

var (
	// ErrExhausted means the requested pax would exceed the date's capacity.
	// Remediation is picking another date, not retrying.
	ErrExhausted = errors.New("inventory exhausted for date")
	// ErrLockFailed covers transport or store failures during reserve.
	ErrLockFailed = errors.New("inventory reservation failed")
)
