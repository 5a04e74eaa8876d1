package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/opcache/internal/cli"
)

// CLI runs opcache against a temp working directory.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "opcache" or "--cwd" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes the CLI with stdin.
func (r *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"opcache", "--cwd", r.Dir}, args...)
	code := cli.Run(strings.NewReader(stdin), &outBuf, &errBuf, fullArgs, r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	require.Equal(r.t, 0, code, "command %v failed\nstderr: %s", args, stderr)

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	require.NotEqual(r.t, 0, code, "command %v should have failed\nstdout: %s", args, stdout)

	return strings.TrimSpace(stderr)
}

// SnapshotPath returns the default snapshot location.
func (r *CLI) SnapshotPath() string {
	return filepath.Join(r.Dir, ".opcache", "cache.json")
}

// ReadSnapshot returns the snapshot file content.
func (r *CLI) ReadSnapshot() string {
	r.t.Helper()

	data, err := os.ReadFile(r.SnapshotPath())
	require.NoError(r.t, err)

	return string(data)
}

// WriteFile writes content relative to Dir, creating parent directories.
func (r *CLI) WriteFile(rel, content string) {
	r.t.Helper()

	path := filepath.Join(r.Dir, rel)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o600))
}
