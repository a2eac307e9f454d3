// Package shell hands paths to the desktop environment.
package shell

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FileManagerCommand returns the command that opens a folder in the file
// manager of goos.
func FileManagerCommand(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default: // linux, freebsd, etc.
		return "xdg-open"
	}
}

// Reveal opens path in the system's default file manager without waiting
// for it to exit.
func Reveal(path string) error {
	return reveal(FileManagerCommand(runtime.GOOS), path)
}

func reveal(command, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot reveal %s: %w", path, err)
	}

	if !fi.IsDir() {
		return fmt.Errorf("cannot reveal %s: not a directory", path)
	}

	cmd := exec.Command(command, path)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open file manager: %w", err)
	}

	// Reap the child once the file manager returns.
	go func() { _ = cmd.Wait() }()

	return nil
}
