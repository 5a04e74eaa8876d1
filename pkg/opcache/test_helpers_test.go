package opcache_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/opcache/pkg/fs"
	"github.com/calvinalkan/opcache/pkg/opcache"
)

func cachePath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "cache.json")
}

func readSnapshot(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	return string(data)
}

func writeSnapshot(t *testing.T, path, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
}

func openCache[K comparable, V any](t *testing.T, opts opcache.Options[K, V]) *opcache.Cache[K, V] {
	t.Helper()

	c, err := opcache.Open(opts)
	if err != nil {
		t.Fatalf("Open(%q): %v", opts.Path, err)
	}

	return c
}

func assertSnapshot(t *testing.T, path, want string) {
	t.Helper()

	if got := readSnapshot(t, path); got != want {
		t.Fatalf("snapshot=%s, want=%s", got, want)
	}
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat %s: err=%v, want not exist", path, err)
	}
}

// logBuffer captures store logs so tests can count repair events.
type logBuffer struct {
	buf bytes.Buffer
}

func (l *logBuffer) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&l.buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (l *logBuffer) count(msg string) int {
	return strings.Count(l.buf.String(), "msg=\""+msg+"\"")
}

// scriptedFS wraps an [fs.FS] and fails ReadFile calls from a script.
// A nil script entry lets the call through.
type scriptedFS struct {
	fs.FS

	readErrs    []error
	dropWrites  bool
	writeCounts int
}

func (s *scriptedFS) ReadFile(path string) ([]byte, error) {
	if len(s.readErrs) > 0 {
		err := s.readErrs[0]
		s.readErrs = s.readErrs[1:]

		if err != nil {
			return nil, err
		}
	}

	return s.FS.ReadFile(path)
}

func (s *scriptedFS) WriteFileAtomic(path string, data []byte) error {
	s.writeCounts++

	if s.dropWrites {
		return nil
	}

	return s.FS.WriteFileAtomic(path, data)
}
