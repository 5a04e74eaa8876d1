package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/opcache/pkg/fs"
)

// countingFS counts ReadFile calls per path.
type countingFS struct {
	fs.FS

	reads map[string]int
}

func (c *countingFS) ReadFile(path string) ([]byte, error) {
	c.reads[path]++

	return c.FS.ReadFile(path)
}

func Test_Check_Reads_Snapshot_Through_Session_Filesystem_When_Diagnosing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{'boo': 'far'}]`), 0o644))

	cfg := DefaultConfig()
	cfg.PathAbs = path

	fsys := &countingFS{FS: fs.NewReal(), reads: map[string]int{}}

	s := newSession(cfg, nil)
	s.fsys = fsys

	var stdout, stderr bytes.Buffer

	o := NewIO(&stdout, &stderr)

	require.NoError(t, execCheck(o, s))
	assert.Equal(t, 1, o.Finish())

	// Diagnosis, load, and the re-read after repair.
	assert.Equal(t, 3, fsys.reads[path])
	assert.Contains(t, stderr.String(), "snapshot had syntax corruption")
	assert.Equal(t, "ok: 0 entries in "+path+"\n", stdout.String())
}

func Test_Check_Fails_When_Session_Filesystem_Cannot_Read_Snapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["a",1]]`), 0o644))

	cfg := DefaultConfig()
	cfg.PathAbs = path

	chaos := fs.NewChaos(fs.NewReal(), 1, fs.ChaosConfig{})
	chaos.SetMode(fs.ChaosModeStickyOnly)
	chaos.SetPathState(path, fs.PathIOError)

	s := newSession(cfg, nil)
	s.fsys = chaos

	var stdout, stderr bytes.Buffer

	err := execCheck(NewIO(&stdout, &stderr), s)
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err), "err=%v", err)
}
