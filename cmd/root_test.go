package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/inovacc/gitroster/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	configFile string
	baseDir    string
	storePath  string
}

func setupEnv(t *testing.T, extra string) env {
	t.Helper()

	dir := testcli.MkdirTemp(t)
	e := env{
		configFile: filepath.Join(dir, "config.yaml"),
		baseDir:    filepath.Join(dir, "Git"),
		storePath:  filepath.Join(dir, "state", "repositories.yaml"),
	}

	if extra != "" {
		e.storePath = filepath.Join(dir, "state", "repositories.db")
	}

	content := fmt.Sprintf("base_directory: %s\nstore:\n  path: %s\n%s", e.baseDir, e.storePath, extra)
	require.NoError(t, os.WriteFile(e.configFile, []byte(content), 0o600))

	return e
}

func (e env) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	return e.runWithInput(t, "", args...)
}

func (e env) runWithInput(t *testing.T, input string, args ...string) (int, string, string) {
	t.Helper()

	full := append([]string{"gitroster", "--config", e.configFile}, args...)

	var stdin io.Reader
	if input != "" {
		stdin = strings.NewReader(input)
	}

	return testcli.Main(t, full, stdin, Run)
}

func (e env) list(t *testing.T) []map[string]any {
	t.Helper()

	exitCode, stdout, stderr := e.run(t, "list", "--json")
	require.Equal(t, 0, exitCode, stderr)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))

	return records
}

func TestAddListRemove(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, stdout, stderr := e.run(t, "add", "https://example.com/sample-repo.git")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "", stderr)
	assert.Equal(t, fmt.Sprintf("Added sample-repo → %s\n", filepath.Join(e.baseDir, "sample-repo")), stdout)

	exitCode, _, stderr = e.run(t, "add", "git@example.com:team/tool.git", "--name", "tooling")
	require.Equal(t, 0, exitCode, stderr)

	records := e.list(t)
	require.Len(t, records, 2)
	assert.Equal(t, "sample-repo", records[0]["name"])
	assert.Equal(t, "https://example.com/sample-repo.git", records[0]["url"])
	assert.Equal(t, filepath.Join(e.baseDir, "sample-repo"), records[0]["local_path"])
	assert.Equal(t, "NotCloned", records[0]["status"])
	assert.Equal(t, "tooling", records[1]["name"])

	exitCode, stdout, _ = e.run(t, "list")
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "sample-repo")
	assert.Contains(t, stdout, "NotCloned")
	assert.Contains(t, stdout, "Last updated: ")

	exitCode, stdout, stderr = e.runWithInput(t, "y\n", "remove", "SAMPLE-REPO")
	assert.Equal(t, 0, exitCode, stderr)
	assert.Contains(t, stdout, "Remove sample-repo from the list?")
	assert.Contains(t, stdout, "Removed sample-repo")

	records = e.list(t)
	require.Len(t, records, 1)
	assert.Equal(t, "tooling", records[0]["name"])

	exitCode, _, stderr = e.run(t, "rm", "sample-repo")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "repository not found")
}

func TestAddErrors(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, _ := e.run(t, "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode)

	exitCode, _, stderr := e.run(t, "add", "HTTPS://example.com/A.git")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "already tracked")

	exitCode, _, stderr = e.run(t, "add", "   ")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "url is empty")

	exitCode, _, _ = e.run(t, "add")
	assert.Equal(t, 1, exitCode)

	assert.Len(t, e.list(t), 1)
}

func TestRemoveAsksForConfirmation(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, _ := e.run(t, "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode)

	for _, input := range []string{"", "n\n", "yes please\n"} {
		exitCode, stdout, stderr := e.runWithInput(t, input, "rm", "a")
		assert.Equal(t, 0, exitCode, stderr)
		assert.Contains(t, stdout, "Cancelled.")
		assert.NotContains(t, stdout, "Removed")
		assert.Len(t, e.list(t), 1)
	}

	exitCode, stdout, stderr := e.run(t, "rm", "--yes", "a")
	require.Equal(t, 0, exitCode, stderr)
	assert.NotContains(t, stdout, "[y/N]")
	assert.Contains(t, stdout, "Removed a")
	assert.Empty(t, e.list(t))
}

func TestListEmpty(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, stdout, _ := e.run(t, "list")
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "No repositories tracked")

	exitCode, stdout, _ = e.run(t, "list", "--json")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "[]\n", stdout)
}

func TestCloneAndPull(t *testing.T) {
	e := setupEnv(t, "")
	up := gittest.NewUpstream(t, "Initial commit")

	exitCode, _, stderr := e.run(t, "add", up.Dir)
	require.Equal(t, 0, exitCode, stderr)

	exitCode, stdout, stderr := e.run(t, "clone", "upstream")
	require.Equal(t, 0, exitCode, stderr)
	assert.Equal(t, "✓ upstream: main | cloned\n", stdout)
	assert.DirExists(t, filepath.Join(e.baseDir, "upstream", ".git"))

	records := e.list(t)
	require.Len(t, records, 1)
	assert.Equal(t, "UpToDate", records[0]["status"])
	assert.Equal(t, "main", records[0]["branch"])
	assert.Equal(t, "Initial commit", records[0]["last_commit"])

	exitCode, stdout, _ = e.run(t, "pull", "upstream")
	require.Equal(t, 0, exitCode)
	assert.Equal(t, "✓ upstream: main | no changes\n", stdout)

	up.Commit(t, "Second commit")

	exitCode, stdout, _ = e.run(t, "pull", "--all")
	require.Equal(t, 0, exitCode)
	assert.Equal(t, "✓ upstream: main | Second commit\n", stdout)

	records = e.list(t)
	assert.Equal(t, "Second commit", records[0]["last_commit"])

	exitCode, _, stderr = e.run(t, "clone", "upstream")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "not allowed")
}

func TestCloneAddsUntrackedURL(t *testing.T) {
	e := setupEnv(t, "")
	up := gittest.NewUpstream(t, "Initial commit")

	exitCode, stdout, stderr := e.run(t, "clone", up.Dir)
	require.Equal(t, 0, exitCode, stderr)
	assert.Contains(t, stdout, "Added upstream")
	assert.Contains(t, stdout, "✓ upstream")

	assert.Len(t, e.list(t), 1)

	exitCode, _, stderr = e.run(t, "clone", "unknown-name")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "repository not found")
}

func TestCloneAllReportsFailures(t *testing.T) {
	e := setupEnv(t, "")
	up := gittest.NewUpstream(t, "Initial commit")

	for _, args := range [][]string{
		{"add", up.Dir, "--name", "good"},
		{"add", gittest.Unreachable(t), "--name", "bad"},
	} {
		exitCode, _, stderr := e.run(t, args...)
		require.Equal(t, 0, exitCode, stderr)
	}

	exitCode, stdout, stderr := e.run(t, "clone", "--all")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout, "✓ good")
	assert.Contains(t, stdout, "✗ bad")
	assert.Contains(t, stderr, "1 of 2 repositories failed")

	records := e.list(t)
	require.Len(t, records, 2)
	assert.Equal(t, "UpToDate", records[0]["status"])
	assert.Equal(t, "Error", records[1]["status"])

	exitCode, stdout, _ = e.run(t, "pull", "bad")
	assert.Equal(t, 1, exitCode)
	assert.Empty(t, stdout)

	exitCode, _, _ = e.run(t, "clone", "--all", "good")
	assert.Equal(t, 1, exitCode)
}

func TestCloneAllNothingToDo(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, stdout, _ := e.run(t, "clone", "--all")
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "Nothing to do\n", stdout)
}

func TestPullNotCloned(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, _ := e.run(t, "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode)

	exitCode, _, stderr := e.run(t, "pull", "a")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "not a repository")

	records := e.list(t)
	assert.Equal(t, "Error", records[0]["status"])
}

func TestNoSelectionWithoutTerminal(t *testing.T) {
	e := setupEnv(t, "")

	for _, name := range []string{"remove", "pull", "clone", "open"} {
		exitCode, _, stderr := e.run(t, name)
		assert.Equal(t, 1, exitCode, name)
		assert.Contains(t, stderr, "no repository selected", name)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	e := setupEnv(t, "")
	newBase := filepath.Join(testcli.MkdirTemp(t), "src")

	exitCode, stdout, stderr := e.run(t, "config", "set", "base-directory", newBase)
	require.Equal(t, 0, exitCode, stderr)
	assert.Contains(t, stdout, "Base directory set to "+newBase)

	exitCode, stdout, _ = e.run(t, "config", "show")
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, "base_directory: "+newBase)
	assert.Contains(t, stdout, "backend: file")

	exitCode, stdout, _ = e.run(t, "add", "https://example.com/next.git")
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stdout, filepath.Join(newBase, "next"))
}

func TestBoltBackend(t *testing.T) {
	e := setupEnv(t, "  backend: bolt\n")

	exitCode, _, stderr := e.run(t, "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode, stderr)
	assert.FileExists(t, e.storePath)

	records := e.list(t)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0]["name"])
}

func TestInvalidFlagsAndConfig(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, stderr := e.run(t, "--log-level", "loud", "list")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr, "unsupported log level")

	exitCode, _, _ = testcli.Main(t, []string{"gitroster", "--config", filepath.Join(testcli.MkdirTemp(t), "missing.yaml"), "list"}, nil, Run)
	assert.Equal(t, 1, exitCode)
}

func TestStructuredLogging(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, stderr := e.run(t, "--log-level", "info", "--log-format", "structured", "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode)
	assert.Contains(t, stderr, `"msg":"repository added"`)
}

func TestPickSelectsRepository(t *testing.T) {
	e := setupEnv(t, "")

	exitCode, _, stderr := e.run(t, "add", "https://example.com/a.git")
	require.Equal(t, 0, exitCode, stderr)

	a := &app{stdout: io.Discard, stderr: io.Discard, configFile: e.configFile}
	defer a.close()

	reg, err := a.registry()
	require.NoError(t, err)

	_, ok := reg.Selected()
	assert.False(t, ok)

	snap, err := a.pick(reg, []string{"A"}, "Open repository", nil)
	require.NoError(t, err)

	selected, ok := reg.Selected()
	require.True(t, ok)
	assert.Equal(t, snap.ID, selected.ID)
	assert.Equal(t, "a", selected.Name)

	_, err = a.pick(reg, []string{"missing"}, "Open repository", nil)
	assert.Error(t, err)

	selected, ok = reg.Selected()
	require.True(t, ok)
	assert.Equal(t, snap.ID, selected.ID)
}
