package git

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/inovacc/gitroster/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

func TestClient_CloneAndPull(t *testing.T) {
	requireGit(t)

	ctx := context.Background()
	up := gittest.NewUpstream(t, "Initial commit")
	dst := filepath.Join(t.TempDir(), "clone")
	client := NewClient()

	head, err := client.Clone(ctx, up.Dir, dst)
	require.NoError(t, err)
	assert.Equal(t, gittest.Branch, head.Branch)
	assert.Equal(t, "Initial commit", head.Message)

	who := Identity{Name: "gitroster", Email: "gitroster@localhost"}

	res, err := client.Pull(ctx, dst, who)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	up.Commit(t, "Second commit")

	res, err = client.Pull(ctx, dst, who)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Second commit", res.Head.Message)

	remote, err := client.RemoteURL(dst)
	require.NoError(t, err)
	assert.Equal(t, up.Dir, remote)
}

func TestClient_PullNotRepository(t *testing.T) {
	_, err := NewClient().Pull(context.Background(), t.TempDir(), Identity{})
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestClient_PullWithoutRemote(t *testing.T) {
	up := gittest.NewUpstream(t, "Initial commit")

	_, err := NewClient().Pull(context.Background(), up.Dir, Identity{})
	require.ErrorIs(t, err, ErrNoRemote)
	assert.Equal(t, "no remote to pull from", Hint(err))

	_, err = NewClient().RemoteURL(up.Dir)
	assert.ErrorIs(t, err, ErrNoRemote)
}

func TestClient_CloneUnreachable(t *testing.T) {
	requireGit(t)

	_, err := NewClient().Clone(context.Background(), gittest.Unreachable(t), filepath.Join(t.TempDir(), "clone"))
	require.Error(t, err)

	var gitErr *GitError
	assert.True(t, errors.As(err, &gitErr))
	assert.NotEqual(t, 0, GetExitCode(err))
}

func TestClient_IsRepository(t *testing.T) {
	assert.False(t, NewClient().IsRepository(t.TempDir()))
	assert.True(t, NewClient().IsRepository(gittest.NewEmptyUpstream(t).Dir))
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", NewGitError(nil, "fatal: Authentication failed for 'https://x'", errors.New("exit 128")), "authentication required"},
		{"ref", NewGitError(nil, "fatal: couldn't find remote ref main", errors.New("exit 1")), "remote branch not found"},
		{"conflict", errors.New("non-fast-forward update"), "local and remote history diverged"},
		{"exists", NewGitError(nil, "fatal: destination path 'x' already exists", errors.New("exit 128")), "destination already exists"},
		{"not repo", ErrNotRepository, "not a git repository"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hint(tt.err))
		})
	}
}

func TestGitError_Message(t *testing.T) {
	err := NewGitError([]string{"clone"}, "fatal: boom\n", errors.New("exit status 128"))
	assert.Equal(t, "git command failed: fatal: boom", err.Error())
	assert.Equal(t, -1, err.ExitCode)
}
