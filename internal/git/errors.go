package git

import (
	"errors"
	"os/exec"
	"strings"
)

// Common error messages from git and go-git
const (
	errMsgNotRepository    = "not a git repository"
	errMsgAuthFailed       = "Authentication failed"
	errMsgAuthRequired     = "authentication required"
	errMsgPermissionDenied = "Permission denied"
	errMsgRefNotFound      = "couldn't find remote ref"
	errMsgConflict         = "CONFLICT"
	errMsgNonFastForward   = "non-fast-forward"
	errMsgAlreadyExists    = "already exists"
)

// IsNotRepository checks if the error indicates not a git repository
func IsNotRepository(err error) bool {
	return errors.Is(err, ErrNotRepository) || containsError(err, errMsgNotRepository)
}

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) ||
		containsError(err, errMsgAuthRequired) ||
		containsError(err, errMsgPermissionDenied)
}

// IsRefNotFound checks if the error indicates a ref was not found
func IsRefNotFound(err error) bool {
	return containsError(err, errMsgRefNotFound)
}

// IsConflict checks if the error indicates a merge conflict or a pull
// that cannot be fast-forwarded
func IsConflict(err error) bool {
	return containsError(err, errMsgConflict) || containsError(err, errMsgNonFastForward)
}

// IsAlreadyExists checks if the error indicates the clone target is taken
func IsAlreadyExists(err error) bool {
	return containsError(err, errMsgAlreadyExists)
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// GetExitCode returns the exit code from a git error, or -1 if not available
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

// NewGitError creates a GitError from command output and error
func NewGitError(args []string, stderr string, err error) *GitError {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &GitError{
		ExitCode: exitCode,
		Stderr:   stderr,
		Args:     args,
		err:      err,
	}
}

// Hint returns a short human-readable reason for a failed operation, or ""
// when the error is not one git reports in a recognizable way.
func Hint(err error) string {
	switch {
	case IsAuthRequired(err):
		return "authentication required"
	case IsRefNotFound(err):
		return "remote branch not found"
	case IsConflict(err):
		return "local and remote history diverged"
	case IsAlreadyExists(err):
		return "destination already exists"
	case IsNotRepository(err):
		return "not a git repository"
	case errors.Is(err, ErrNoRemote):
		return "no remote to pull from"
	}

	return ""
}
