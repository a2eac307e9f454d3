// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Branch is the default branch of every upstream created here.
const Branch = "main"

// Upstream is a non-bare repository used as a clone source.
type Upstream struct {
	Dir    string
	repo   *gogit.Repository
	prefix string
	n      int
}

// NewUpstream creates an upstream with one commit whose message is message.
func NewUpstream(t testing.TB, message string) *Upstream {
	t.Helper()

	u := NewEmptyUpstream(t)
	u.Commit(t, message)

	return u
}

// NewEmptyUpstream creates an upstream with no commits.
func NewEmptyUpstream(t testing.TB) *Upstream {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "upstream")

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(Branch)},
	})
	require.NoError(t, err)

	return &Upstream{Dir: dir, repo: repo}
}

// Open wraps an existing working copy, such as a clone, so that commits
// can be made in it. Its files never collide with the upstream's.
func Open(t testing.TB, dir string) *Upstream {
	t.Helper()

	repo, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	return &Upstream{Dir: dir, repo: repo, prefix: "local-"}
}

// Commit writes a new file and commits it, returning the commit hash.
func (u *Upstream) Commit(t testing.TB, message string) string {
	t.Helper()

	u.n++
	name := filepath.Join(u.Dir, fmt.Sprintf("%sfile%d.txt", u.prefix, u.n))
	require.NoError(t, os.WriteFile(name, []byte(message+"\n"), 0o644))

	wt, err := u.repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(filepath.Base(name))
	require.NoError(t, err)

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Tests", Email: "tests@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return hash.String()
}

// Unreachable returns a remote location that cannot be cloned.
func Unreachable(t testing.TB) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "does-not-exist.git")
}
