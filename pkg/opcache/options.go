package opcache

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/calvinalkan/opcache/pkg/fs"
)

// Options configures [Open].
type Options[K comparable, V any] struct {
	// Path is the absolute path of the snapshot file.
	//
	// Optional. When empty the cache is memory-only and every durability
	// operation is a no-op. Relative paths are rejected with
	// [ErrInvalidInput]; resolve them against a working directory first.
	Path string

	// Validate is called with the loaded pairs (after any corruption repair)
	// before the cache is returned. A non-nil error aborts [Open] with a
	// [ValidationError]. Only called when Path is set.
	Validate func(pairs []Pair[K, V]) error

	// ThrowOnCorruption makes [Open] fail with a [CorruptionError] when the
	// snapshot is malformed. When false (the default) the file is rewritten
	// from the in-memory persisted set instead.
	ThrowOnCorruption bool

	// RecoverReadErrors treats an unreadable snapshot (permission denied,
	// I/O error) as empty and rewrites it, instead of failing. Ignored when
	// ThrowOnCorruption is set. A missing file is always recreated.
	RecoverReadErrors bool

	// PersistLoaded adds the pairs loaded by [Open] to the persisted set.
	//
	// By default the persisted set starts empty and only persisting
	// [Cache.Set] and [Cache.Delete] calls change it, so the first persisting
	// write replaces whatever the file held. Set this when each process
	// persists a few keys and must keep the ones written by earlier runs.
	PersistLoaded bool

	// FS is the filesystem used for the snapshot. Defaults to [fs.Real].
	FS fs.FS

	// Logger receives repair and write events. Defaults to discarding.
	Logger *slog.Logger
}

func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.FS == nil {
		o.FS = fs.NewReal()
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return o
}

func (o Options[K, V]) validate() error {
	if o.Path == "" {
		return nil
	}

	if !filepath.IsAbs(o.Path) {
		return fmt.Errorf("path must be absolute, got %q: %w", o.Path, ErrInvalidInput)
	}

	return nil
}
