// Package fs provides the filesystem abstraction used by opcache, plus a
// fault-injecting implementation for tests.
//
// The main types are:
//   - [FS]: the whole-file operations a snapshot store needs
//   - [Real]: production implementation using [os] and atomic renames
//   - [Chaos]: testing implementation that injects random failures
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("/var/cache/app/cache.json")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("/var/cache/app/cache.json", data)
package fs

import (
	"os"
)

// FS defines whole-file operations on resolved paths.
//
// Two implementations are provided:
//   - [Real]: production use, wraps [os] package
//   - [Chaos]: testing use, injects random failures
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths used by the standard library io/fs package. Callers
// are expected to pass absolute paths; relative paths resolve against the
// process working directory like [os] does.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary. See [os.WriteFile].
	//
	// Note: WriteFile is not atomic. Errors or crashes can leave a partially
	// written or empty file. Use [FS.WriteFileAtomic] for anything that must
	// survive a failed write.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// WriteFileAtomic replaces the file at path with data.
	// Uses a temp file + rename so readers see either the old or the new
	// contents, never a mix.
	WriteFileAtomic(path string, data []byte) error

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}
