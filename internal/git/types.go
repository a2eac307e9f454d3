// Package git implements clone and pull against git remotes.
//
// Two backends share the same method set:
//
//   - [GoGit] runs in-process on top of go-git. It fast-forwards on its own
//     and hands diverged pulls to a [Merger], normally the git executable.
//   - [Client] shells out to the git executable, so it supports merge pulls
//     and whatever transports and credential helpers the user has set up.
package git

import (
	"errors"
	"strings"
)

// ErrNotRepository is returned when a path is not a local git repository.
var ErrNotRepository = errors.New("not a git repository")

// ErrNoRemote is returned by a pull when the repository has no remote to
// pull from.
var ErrNoRemote = errors.New("remote not configured")

// DetachedBranch is reported as the branch name when HEAD is detached.
const DetachedBranch = "(no branch)"

// Identity is the committer used for any merge commit created by a pull.
type Identity struct {
	Name  string
	Email string
}

// Head describes the checked-out branch and its tip.
type Head struct {
	Branch string
	// Hash is empty when the branch has no commits yet.
	Hash string
	// Message is the first line of the tip commit message.
	Message string
}

// HasCommits reports whether the branch has a tip commit.
func (h Head) HasCommits() bool {
	return h.Hash != ""
}

// PullResult is the outcome of a successful pull.
type PullResult struct {
	// Changed is false when the branch was already up to date.
	Changed bool
	Head    Head
}

// ShortMessage returns the first line of a commit message.
func ShortMessage(message string) string {
	message = strings.TrimSpace(message)
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}

	return strings.TrimSpace(message)
}
