package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingCredential = errors.New("github token not configured")
	ErrMissingTrackingID = errors.New("gist_id not found in frontmatter")
	ErrRemote            = errors.New("remote call failed")
)

// RemoteError wraps a failed call to the Gist API.
type RemoteError struct {
	Op  string // "create" or "update"
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gist %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is reports ErrRemote as a match so callers can test with errors.Is.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
