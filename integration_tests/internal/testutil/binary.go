package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// GetBinaryPath returns the path to the sitebuild binary for integration tests.
// It checks, in order: the current directory, the repository root and bin/.
func GetBinaryPath() string {
	for _, p := range []string{
		"sitebuild",
		filepath.Join("..", "sitebuild"),
		filepath.Join("..", "bin", "sitebuild"),
	} {
		if _, err := os.Stat(p); err == nil {
			abs, err := filepath.Abs(p)
			if err == nil {
				return abs
			}
			return p
		}
	}
	return "./sitebuild"
}

// Result is the outcome of one CLI invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run invokes the binary in dir and waits for it to exit.
func Run(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, GetBinaryPath(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "LOG_FORMAT=text")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := Result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("failed to run sitebuild: %v", err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}
