package fs

import (
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate     float64 // Fail ReadFile entirely
	WriteFailRate    float64 // Fail WriteFile/WriteFileAtomic entirely
	PartialWriteRate float64 // Write a truncated prefix non-atomically, then fail
	StatFailRate     float64 // Fail Exists
	RemoveFailRate   float64 // Fail Remove
}

// DefaultChaosConfig returns a config with reasonable fault rates for testing.
func DefaultChaosConfig() ChaosConfig {
	return ChaosConfig{
		ReadFailRate:     0.05,
		WriteFailRate:    0.05,
		PartialWriteRate: 0.05,
		StatFailRate:     0.02,
		RemoveFailRate:   0.05,
	}
}

// PathState tracks the fault state of a path for consistent error injection.
type PathState int

const (
	// PathNormal means no persistent fault - errors are transient.
	// This is the zero value, so untracked paths are normal.
	PathNormal PathState = iota
	// PathIOError is sticky - the path has a "bad sector" and always returns EIO.
	PathIOError
	// PathReadOnly is sticky for writes - filesystem is read-only, returns EROFS.
	PathReadOnly
	// PathNoPermission is semi-sticky - operations return EACCES 80% of the time.
	PathNoPermission
)

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	// Sticky state is not cleared; it is simply not consulted while in this mode.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection and sticky path state.
	ChaosModeInject

	// ChaosModeStickyOnly applies only sticky path state. Fault rates are disabled.
	ChaosModeStickyOnly
)

// Chaos wraps an [FS] and injects random failures for testing.
//
// Errors are state-aware: once a path gets EIO (bad sector), it stays broken.
// Errors are also reality-aware: ENOENT is only returned if the file really
// doesn't exist on the underlying filesystem.
//
// All injected errors are real OS errors (syscall.Errno wrapped in os.PathError)
// so they behave identically to real filesystem errors.
//
// The zero mode is [ChaosModePassthrough]; call [Chaos.SetMode] to start injecting.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32

	mu         sync.RWMutex
	pathStates map[string]PathState

	readFails     atomic.Int64
	writeFails    atomic.Int64
	partialWrites atomic.Int64
	statFails     atomic.Int64
	removeFails   atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	return &Chaos{
		fs:         fs,
		rng:        rand.New(rand.NewSource(seed)),
		config:     config,
		pathStates: make(map[string]PathState),
	}
}

// SetMode updates Chaos behavior. Safe to call concurrently with filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails     int64
	WriteFails    int64
	PartialWrites int64
	StatFails     int64
	RemoveFails   int64
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:     c.readFails.Load(),
		WriteFails:    c.writeFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		StatFails:     c.statFails.Load(),
		RemoveFails:   c.removeFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.ReadFails + s.WriteFails + s.PartialWrites + s.StatFails + s.RemoveFails
}

// PathState returns the current fault state for a path (for testing).
func (c *Chaos) PathState(path string) PathState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pathStates[path]
}

// SetPathState forces a sticky fault state on path (for testing).
func (c *Chaos) SetPathState(path string, state PathState) {
	c.setState(path, state)
}

// ResetAllPathStates clears all fault states (for testing).
func (c *Chaos) ResetAllPathStates() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pathStates = make(map[string]PathState)
}

func (c *Chaos) should(mode ChaosMode, rate float64) bool {
	if mode != ChaosModeInject {
		return false
	}

	return c.randFloat() < rate
}

func (c *Chaos) randFloat() float64 {
	c.mu.Lock()
	result := c.rng.Float64()
	c.mu.Unlock()

	return result
}

func (c *Chaos) randIntn(n int) int {
	c.mu.Lock()
	result := c.rng.Intn(n)
	c.mu.Unlock()

	return result
}

func (c *Chaos) getState(path string) PathState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pathStates[path]
}

func (c *Chaos) setState(path string, state PathState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state == PathNormal {
		delete(c.pathStates, path)
	} else {
		c.pathStates[path] = state
	}
}

func errToState(err syscall.Errno) PathState {
	switch err {
	case syscall.EIO:
		return PathIOError
	case syscall.EROFS:
		return PathReadOnly
	case syscall.EACCES, syscall.EPERM:
		return PathNoPermission
	default:
		return PathNormal
	}
}

func isWriteOp(op string) bool {
	switch op {
	case "write", "remove":
		return true
	}

	return false
}

// pathError creates an *os.PathError with the given operation, path, and errno.
// This matches what the real OS returns, so errors.Is() works correctly.
func pathError(op, path string, errno syscall.Errno) error {
	pe := &fs.PathError{Op: op, Path: path, Err: errno}
	markInjectedPathError(pe)

	return pe
}

// stickyError returns the error a sticky path state forces for op, or nil.
// Semi-sticky permission errors recover 20% of the time.
func (c *Chaos) stickyError(op, path string) error {
	switch c.getState(path) {
	case PathIOError:
		return pathError(op, path, syscall.EIO)
	case PathReadOnly:
		if isWriteOp(op) {
			return pathError(op, path, syscall.EROFS)
		}
	case PathNoPermission:
		if c.randFloat() < 0.8 {
			return pathError(op, path, syscall.EACCES)
		}

		c.setState(path, PathNormal)
	}

	return nil
}

// pickError selects an errno consistent with op and the real existence of path.
func (c *Chaos) pickError(op string, path string) (syscall.Errno, error) {
	var valid []syscall.Errno

	switch op {
	case "read":
		exists, err := c.fs.Exists(path)
		if err != nil {
			return 0, err
		}

		if exists {
			valid = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EMFILE}
		} else {
			valid = []syscall.Errno{syscall.ENOENT, syscall.EACCES, syscall.EIO}
		}

	case "write":
		valid = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS}

	case "remove":
		exists, err := c.fs.Exists(path)
		if err != nil {
			return 0, err
		}

		if exists {
			valid = []syscall.Errno{syscall.EACCES, syscall.EIO, syscall.EBUSY, syscall.EPERM}
		} else {
			valid = []syscall.Errno{syscall.ENOENT}
		}

	case "stat":
		valid = []syscall.Errno{syscall.EACCES, syscall.EIO}

	default:
		valid = []syscall.Errno{syscall.EIO}
	}

	errno := valid[c.randIntn(len(valid))]
	c.setState(path, errToState(errno))

	return errno, nil
}

func (c *Chaos) currentMode() ChaosMode {
	return ChaosMode(c.mode.Load())
}

func (c *Chaos) ReadFile(path string) ([]byte, error) {
	mode := c.currentMode()
	if mode == ChaosModePassthrough {
		return c.fs.ReadFile(path)
	}

	if err := c.stickyError("read", path); err != nil {
		c.readFails.Add(1)

		return nil, err
	}

	if c.should(mode, c.config.ReadFailRate) {
		errno, err := c.pickError("read", path)
		if err != nil {
			return nil, err
		}

		c.readFails.Add(1)

		return nil, pathError("read", path, errno)
	}

	return c.fs.ReadFile(path)
}

func (c *Chaos) WriteFile(path string, data []byte, perm os.FileMode) error {
	mode := c.currentMode()
	if mode == ChaosModePassthrough {
		return c.fs.WriteFile(path, data, perm)
	}

	if err := c.stickyError("write", path); err != nil {
		c.writeFails.Add(1)

		return err
	}

	if c.should(mode, c.config.WriteFailRate) {
		errno, err := c.pickError("write", path)
		if err != nil {
			return err
		}

		c.writeFails.Add(1)

		return pathError("write", path, errno)
	}

	return c.fs.WriteFile(path, data, perm)
}

func (c *Chaos) WriteFileAtomic(path string, data []byte) error {
	mode := c.currentMode()
	if mode == ChaosModePassthrough {
		return c.fs.WriteFileAtomic(path, data)
	}

	if err := c.stickyError("write", path); err != nil {
		c.writeFails.Add(1)

		return err
	}

	if c.should(mode, c.config.WriteFailRate) {
		errno, err := c.pickError("write", path)
		if err != nil {
			return err
		}

		c.writeFails.Add(1)

		return pathError("write", path, errno)
	}

	// Partial write: bypass atomic, write truncated data directly.
	// Simulates a writer that did not go through temp+rename.
	if c.should(mode, c.config.PartialWriteRate) && len(data) > 1 {
		c.partialWrites.Add(1)
		cutoff := c.randIntn(len(data)-1) + 1

		err := c.fs.WriteFile(path, data[:cutoff], 0o644)
		if err != nil {
			return err
		}

		errno, err := c.pickError("write", path)
		if err != nil {
			return err
		}

		return pathError("write", path, errno)
	}

	return c.fs.WriteFileAtomic(path, data)
}

func (c *Chaos) Exists(path string) (bool, error) {
	mode := c.currentMode()
	if mode == ChaosModePassthrough {
		return c.fs.Exists(path)
	}

	if err := c.stickyError("stat", path); err != nil {
		c.statFails.Add(1)

		return false, err
	}

	if c.should(mode, c.config.StatFailRate) {
		errno, err := c.pickError("stat", path)
		if err != nil {
			return false, err
		}

		c.statFails.Add(1)

		return false, pathError("stat", path, errno)
	}

	return c.fs.Exists(path)
}

func (c *Chaos) Remove(path string) error {
	mode := c.currentMode()
	if mode == ChaosModePassthrough {
		return c.fs.Remove(path)
	}

	if err := c.stickyError("remove", path); err != nil {
		c.removeFails.Add(1)

		return err
	}

	if c.should(mode, c.config.RemoveFailRate) {
		errno, err := c.pickError("remove", path)
		if err != nil {
			return err
		}

		c.removeFails.Add(1)

		return pathError("remove", path, errno)
	}

	return c.fs.Remove(path)
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
