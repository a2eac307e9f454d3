package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManagerCommand(t *testing.T) {
	tests := []struct {
		goos     string
		expected string
	}{
		{goos: "darwin", expected: "open"},
		{goos: "windows", expected: "explorer"},
		{goos: "linux", expected: "xdg-open"},
		{goos: "freebsd", expected: "xdg-open"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileManagerCommand(tt.goos))
		})
	}
}

func TestReveal_MissingPath(t *testing.T) {
	err := Reveal(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "cannot reveal")
}

func TestReveal_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.ErrorContains(t, Reveal(file), "not a directory")
}

func TestReveal_UnknownCommand(t *testing.T) {
	err := reveal("nonexistent-file-manager-12345", t.TempDir())
	assert.ErrorContains(t, err, "failed to open file manager")
}
