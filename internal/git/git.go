package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// baseArgs are prepended to every invocation so output never carries color
// codes or octal-escaped paths
var baseArgs = []string{"-c", "color.ui=false", "-c", "core.quotepath=false"}

// run executes git in dir. Exit codes listed in okCodes are treated as success.
func run(ctx context.Context, dir string, okCodes []int, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append(append([]string{}, baseArgs...), args...)...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			for _, code := range okCodes {
				if exitErr.ExitCode() == code {
					return stdout.String(), nil
				}
			}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s failed: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s failed: %s: %w", args[0], msg, err)
	}
	return stdout.String(), nil
}

// Available reports whether a git executable is on PATH
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo checks if the given directory is the top of a git repository
func IsRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	// worktrees and submodules use a .git file
	return info.IsDir() || info.Mode().IsRegular()
}

// TopLevel returns the repository root containing path
func TopLevel(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, path, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.Clean(strings.TrimSpace(out)), nil
}

// GetRecentCommits returns up to count one-line commit summaries
func GetRecentCommits(ctx context.Context, dir string, count int) ([]string, error) {
	out, err := run(ctx, dir, nil, "log", fmt.Sprintf("-%d", count), "--oneline")
	if err != nil {
		// a repository without commits is not an error
		if strings.Contains(err.Error(), "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
