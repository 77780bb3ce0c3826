package synccache

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("entity not found in collection")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
)

// RemoteError wraps a failed store call. The optimistic cache has already
// been rolled back by the time a caller sees one.
type RemoteError struct {
	Op         string
	Collection string
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteUnavailable }
