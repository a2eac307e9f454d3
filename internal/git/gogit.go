package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Merger completes a pull that cannot be fast-forwarded.
type Merger interface {
	Pull(ctx context.Context, path string, who Identity) (PullResult, error)
}

// GoGit is the in-process backend.
type GoGit struct {
	// RemoteName is the remote pulled from; "origin" when empty.
	RemoteName string
	// Merger takes over when local and remote history diverged. Without
	// one such pulls fail.
	Merger Merger
}

// NewGoGit returns a go-git backend tracking origin. When a git executable
// is on PATH, diverged pulls are merged by it.
func NewGoGit() *GoGit {
	g := &GoGit{RemoteName: gogit.DefaultRemoteName}

	if c := NewClient(); c.GitPath != "" {
		c.RemoteName = g.RemoteName
		g.Merger = c
	}

	return g
}

// Clone clones url into path on the remote's default branch.
func (g *GoGit) Clone(ctx context.Context, url, path string) (Head, error) {
	repo, err := gogit.PlainCloneContext(ctx, path, false, &gogit.CloneOptions{
		URL:        url,
		RemoteName: g.remote(),
	})
	if err != nil {
		return Head{}, fmt.Errorf("clone %s: %w", url, err)
	}

	return readHead(repo)
}

// Pull fetches the tracked remote and fast-forwards the current branch.
// go-git cannot create merge commits, so a diverged branch is handed to
// the Merger, which commits as who.
func (g *GoGit) Pull(ctx context.Context, path string, who Identity) (PullResult, error) {
	repo, err := g.open(path)
	if err != nil {
		return PullResult{}, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return PullResult{}, fmt.Errorf("open worktree %s: %w", path, err)
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{RemoteName: g.remote()})

	changed := true

	switch {
	case errors.Is(err, gogit.NoErrAlreadyUpToDate):
		changed = false
	case errors.Is(err, gogit.ErrNonFastForwardUpdate) && g.Merger != nil:
		return g.Merger.Pull(ctx, path, who)
	case err != nil:
		return PullResult{}, fmt.Errorf("pull %s: %w", path, err)
	}

	head, err := readHead(repo)
	if err != nil {
		return PullResult{}, err
	}

	return PullResult{Changed: changed, Head: head}, nil
}

// IsRepository reports whether path is the root of a git repository.
func (g *GoGit) IsRepository(path string) bool {
	_, err := g.open(path)
	return err == nil
}

func (g *GoGit) open(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
		}

		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return repo, nil
}

func (g *GoGit) remote() string {
	if g.RemoteName == "" {
		return gogit.DefaultRemoteName
	}

	return g.RemoteName
}

func readHead(repo *gogit.Repository) (Head, error) {
	ref, err := repo.Head()
	if err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Head{}, fmt.Errorf("read HEAD: %w", err)
		}

		// Unborn branch: HEAD points at a branch with no commits.
		sym, serr := repo.Storer.Reference(plumbing.HEAD)
		if serr == nil && sym.Type() == plumbing.SymbolicReference {
			return Head{Branch: sym.Target().Short()}, nil
		}

		return Head{}, nil
	}

	head := Head{Branch: DetachedBranch, Hash: ref.Hash().String()}
	if ref.Name().IsBranch() {
		head.Branch = ref.Name().Short()
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return Head{}, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}

	head.Message = ShortMessage(commit.Message)

	return head, nil
}
