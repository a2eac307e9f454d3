package registry

import (
	"errors"

	"github.com/inovacc/gitroster/internal/engine"
)

var (
	// ErrEmptyURL is returned by Add when the URL is blank after trimming.
	ErrEmptyURL = errors.New("repository url is empty")

	// ErrDuplicateURL is returned by Add when the URL is already tracked,
	// compared case-insensitively.
	ErrDuplicateURL = errors.New("repository url already tracked")

	// ErrInvalidName is returned by AddNamed when the name cannot be used as
	// a directory under the base directory.
	ErrInvalidName = errors.New("repository name is not a valid directory name")

	// ErrNotFound is returned when no repository matches an ID or query.
	ErrNotFound = errors.New("repository not found")

	// ErrClosed is returned by operations on a closed registry.
	ErrClosed = errors.New("registry closed")
)

// Engine errors surfaced unchanged by Clone and Pull.
var (
	ErrNotARepository      = engine.ErrNotARepository
	ErrOperationInProgress = engine.ErrOperationInProgress
	ErrTransportFailure    = engine.ErrTransportFailure
	ErrInvalidState        = engine.ErrInvalidState
)
