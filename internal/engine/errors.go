package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotARepository means the local path holds no git repository to pull.
	ErrNotARepository = errors.New("not a repository")

	// ErrOperationInProgress means another clone or pull is running on the
	// same repository.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrTransportFailure wraps network, authentication and remote errors.
	ErrTransportFailure = errors.New("transport failure")

	// ErrInvalidState means the repository's status does not allow the
	// requested operation, such as cloning an already cloned repository.
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// Op names a sync operation.
type Op string

const (
	OpClone Op = "clone"
	OpPull  Op = "pull"
)

// SyncError reports a failed operation on a named repository.
type SyncError struct {
	Op         Op
	Repository string
	Err        error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Repository, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// transportError tags a backend failure as ErrTransportFailure while
// keeping the backend's own error in the chain.
type transportError struct {
	hint string
	err  error
}

func (e *transportError) Error() string {
	if e.hint == "" {
		return fmt.Sprintf("%v: %v", ErrTransportFailure, e.err)
	}

	return fmt.Sprintf("%v (%s): %v", ErrTransportFailure, e.hint, e.err)
}

func (e *transportError) Unwrap() []error {
	return []error{ErrTransportFailure, e.err}
}
