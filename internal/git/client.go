package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Client runs the git executable.
type Client struct {
	GitPath    string // Path to git executable
	RemoteName string // Remote pulled from; "origin" when empty
	Env        []string
}

// NewClient creates a client using the git found on PATH.
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")

	return &Client{
		GitPath:    gitPath,
		RemoteName: "origin",
		// Background operations have no terminal to prompt on.
		Env: []string{"GIT_TERMINAL_PROMPT=0"},
	}
}

// Command creates a git command running in dir (when non-empty).
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.gitPath(), args...)
	cmd.Env = append(os.Environ(), c.Env...)

	if dir != "" {
		cmd.Dir = dir
	}

	return cmd
}

func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	output, err := c.Command(ctx, dir, args...).CombinedOutput()
	if err != nil {
		return "", NewGitError(args, string(output), err)
	}

	return strings.TrimSpace(string(output)), nil
}

// Clone clones a repository on the remote's default branch.
func (c *Client) Clone(ctx context.Context, cloneURL, targetPath string) (Head, error) {
	if _, err := c.run(ctx, "", "clone", "--origin", c.remote(), "--", cloneURL, targetPath); err != nil {
		return Head{}, err
	}

	return c.ReadHead(ctx, targetPath)
}

// Pull fetches and merges the tracked remote into the current branch. Any
// merge commit is authored by who. A repository without the client's remote
// fails with ErrNoRemote before git runs.
func (c *Client) Pull(ctx context.Context, path string, who Identity) (PullResult, error) {
	if !c.IsRepository(path) {
		return PullResult{}, fmt.Errorf("%w: %s", ErrNotRepository, path)
	}

	if _, err := c.RemoteURL(path); err != nil {
		return PullResult{}, err
	}

	before, err := c.ReadHead(ctx, path)
	if err != nil {
		return PullResult{}, err
	}

	args := []string{
		"-c", "user.name=" + who.Name,
		"-c", "user.email=" + who.Email,
		"pull", "--no-rebase", "--no-edit", c.remote(),
	}

	if _, err := c.run(ctx, path, args...); err != nil {
		return PullResult{}, err
	}

	after, err := c.ReadHead(ctx, path)
	if err != nil {
		return PullResult{}, err
	}

	return PullResult{Changed: before.Hash != after.Hash, Head: after}, nil
}

// ReadHead reports the current branch and tip commit of the repository at path.
func (c *Client) ReadHead(ctx context.Context, path string) (Head, error) {
	var head Head

	branch, err := c.run(ctx, path, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if GetExitCode(err) != 1 {
			return Head{}, err
		}

		branch = DetachedBranch
	}

	head.Branch = branch

	hash, err := c.run(ctx, path, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		// Unborn branch.
		return head, nil
	}

	head.Hash = hash

	message, err := c.run(ctx, path, "log", "-1", "--format=%B", "HEAD")
	if err != nil {
		return Head{}, err
	}

	head.Message = ShortMessage(message)

	return head, nil
}

// IsRepository checks that path holds a .git directory with a readable config.
func (c *Client) IsRepository(path string) bool {
	_, err := readGitConfig(path)
	return err == nil
}

// RemoteURL returns the URL configured for the client's remote in the
// repository at path.
func (c *Client) RemoteURL(path string) (string, error) {
	cfg, err := readGitConfig(path)
	if err != nil {
		return "", err
	}

	section, err := cfg.GetSection(fmt.Sprintf("remote %q", c.remote()))
	if err != nil {
		return "", fmt.Errorf("%w: %s in %s", ErrNoRemote, c.remote(), path)
	}

	return section.Key("url").String(), nil
}

func (c *Client) gitPath() string {
	if c.GitPath == "" {
		return "git"
	}

	return c.GitPath
}

func (c *Client) remote() string {
	if c.RemoteName == "" {
		return "origin"
	}

	return c.RemoteName
}

func readGitConfig(path string) (*ini.File, error) {
	gitDir := filepath.Join(path, ".git")

	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
	}

	cfg, err := ini.Load(filepath.Join(gitDir, "config"))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrNotRepository, path), err)
	}

	return cfg, nil
}

// GitError represents a git command error
type GitError struct {
	ExitCode int
	Stderr   string
	Args     []string
	err      error
}

func (e *GitError) Error() string {
	if e.Stderr == "" {
		return fmt.Errorf("git command failed: %w", e.err).Error()
	}
	return fmt.Sprintf("git command failed: %s", strings.TrimSpace(e.Stderr))
}

func (e *GitError) Unwrap() error {
	return e.err
}
