package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allFaults() ChaosConfig {
	return ChaosConfig{
		ReadFailRate:   1.0,
		WriteFailRate:  1.0,
		StatFailRate:   1.0,
		RemoveFailRate: 1.0,
	}
}

func Test_Chaos_Passes_Through_When_Mode_Is_Passthrough(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 12345, allFaults())
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, chaosFS.WriteFileAtomic(path, []byte("hello")))

	got, err := chaosFS.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	exists, err := chaosFS.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, chaosFS.Remove(path))
	assert.Zero(t, chaosFS.TotalFaults())
}

func Test_Chaos_Toggles_Injection_When_Mode_Changes(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 12345, ChaosConfig{WriteFailRate: 1.0})
	dir := t.TempDir()

	chaosFS.SetMode(ChaosModeInject)
	require.Error(t, chaosFS.WriteFileAtomic(filepath.Join(dir, "1"), []byte("a")))

	chaosFS.SetMode(ChaosModePassthrough)
	require.NoError(t, chaosFS.WriteFileAtomic(filepath.Join(dir, "2"), []byte("b")))

	chaosFS.SetMode(ChaosModeInject)
	require.Error(t, chaosFS.WriteFileAtomic(filepath.Join(dir, "3"), []byte("c")))

	assert.Equal(t, int64(2), chaosFS.Stats().WriteFails)
}

func Test_Chaos_Returns_Injected_PathError_When_Write_Fails(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 7, ChaosConfig{WriteFailRate: 1.0})
	chaosFS.SetMode(ChaosModeInject)

	path := filepath.Join(t.TempDir(), "snap.json")
	err := chaosFS.WriteFileAtomic(path, []byte("[]"))

	var pathErr *os.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, path, pathErr.Path)
	assert.True(t, IsInjected(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "failed write must not create the file")
}

func Test_Chaos_Never_Injects_Not_Exist_When_File_Exists(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 99, ChaosConfig{ReadFailRate: 1.0})
	path := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	chaosFS.SetMode(ChaosModeInject)

	for range 50 {
		chaosFS.ResetAllPathStates()

		_, err := chaosFS.ReadFile(path)
		require.Error(t, err)
		assert.False(t, errors.Is(err, os.ErrNotExist), "got %v for an existing file", err)
	}
}

func Test_Chaos_Keeps_Failing_When_Path_Is_Sticky(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 1, ChaosConfig{})
	path := filepath.Join(t.TempDir(), "snap.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	chaosFS.SetMode(ChaosModeStickyOnly)
	chaosFS.SetPathState(path, PathIOError)

	for range 3 {
		_, err := chaosFS.ReadFile(path)
		require.ErrorIs(t, err, syscall.EIO)
	}

	chaosFS.SetPathState(path, PathReadOnly)

	_, err := chaosFS.ReadFile(path)
	require.NoError(t, err, "read-only paths stay readable")
	require.ErrorIs(t, chaosFS.WriteFileAtomic(path, []byte("x")), syscall.EROFS)
	require.ErrorIs(t, chaosFS.Remove(path), syscall.EROFS)

	chaosFS.ResetAllPathStates()
	assert.Equal(t, PathNormal, chaosFS.PathState(path))
	require.NoError(t, chaosFS.WriteFileAtomic(path, []byte("x")))
}

func Test_Chaos_Leaves_Truncated_File_When_Partial_Write_Is_Injected(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 3, ChaosConfig{PartialWriteRate: 1.0})
	chaosFS.SetMode(ChaosModeInject)

	path := filepath.Join(t.TempDir(), "snap.json")
	data := []byte(`[["key","value"]]`)

	err := chaosFS.WriteFileAtomic(path, data)
	require.Error(t, err)
	assert.True(t, IsInjected(err))

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.NotEmpty(t, got)
	assert.Less(t, len(got), len(data))
	assert.Equal(t, string(data[:len(got)]), string(got))
	assert.Equal(t, int64(1), chaosFS.Stats().PartialWrites)
}

func Test_Chaos_Sticky_Only_Ignores_Fault_Rates_When_Path_Is_Normal(t *testing.T) {
	chaosFS := NewChaos(NewReal(), 5, allFaults())
	chaosFS.SetMode(ChaosModeStickyOnly)

	path := filepath.Join(t.TempDir(), "snap.json")

	require.NoError(t, chaosFS.WriteFileAtomic(path, []byte("[]")))

	_, err := chaosFS.ReadFile(path)
	require.NoError(t, err)
	assert.Zero(t, chaosFS.TotalFaults())
}

func Test_IsInjected_Returns_False_When_Error_Is_Real(t *testing.T) {
	_, err := NewReal().ReadFile(filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.False(t, IsInjected(err))
	assert.False(t, IsInjected(nil))
	assert.True(t, IsInjected(&InjectedError{Err: errors.New("boom")}))
}
