package opcache

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/calvinalkan/opcache/pkg/fs"
)

// store mirrors the persisted set to the snapshot file.
//
// The persisted set is kept apart from the cache's in-memory map so that
// entries set without persist never reach disk. Every write rewrites the
// whole file.
type store[K comparable, V any] struct {
	fsys      fs.FS
	path      string
	persisted *orderedmap.OrderedMap[K, V]

	validate          func([]Pair[K, V]) error
	throwOnCorruption bool
	recoverReadErrors bool
	persistLoaded     bool

	log *slog.Logger
}

func newStore[K comparable, V any](opts Options[K, V]) *store[K, V] {
	return &store[K, V]{
		fsys:              opts.FS,
		path:              opts.Path,
		persisted:         orderedmap.New[K, V](),
		validate:          opts.Validate,
		throwOnCorruption: opts.ThrowOnCorruption,
		recoverReadErrors: opts.RecoverReadErrors,
		persistLoaded:     opts.PersistLoaded,
		log:               opts.Logger.With("path", opts.Path),
	}
}

// load creates the snapshot if missing, reads it through the corruption
// policy and runs the validation hook. The loaded pairs join the persisted
// set only with persistLoaded.
func (s *store[K, V]) load() ([]Pair[K, V], error) {
	err := s.ensureFile()
	if err != nil {
		return nil, err
	}

	pairs, err := s.readSnapshot()
	if err != nil {
		return nil, err
	}

	if s.validate != nil {
		err = s.validate(slices.Clone(pairs))
		if err != nil {
			return nil, &ValidationError{Path: s.path, Err: err}
		}
	}

	if s.persistLoaded {
		for _, p := range pairs {
			s.persisted.Set(p.Key, p.Value)
		}
	}

	return pairs, nil
}

func (s *store[K, V]) ensureFile() error {
	exists, err := s.fsys.Exists(s.path)
	if err != nil {
		return fmt.Errorf("stat snapshot %q: %w", s.path, err)
	}

	if exists {
		return nil
	}

	s.log.Info("creating empty snapshot")

	return s.writeSnapshot(nil)
}

// readSnapshot reads and decodes the file, applying the corruption policy.
// The returned pairs are always intact.
func (s *store[K, V]) readSnapshot() ([]Pair[K, V], error) {
	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		return s.recoverRead(err)
	}

	decoded := Decode[K, V](data)

	decision := Decide(decoded.Diagnosis, s.path, s.throwOnCorruption)
	switch decision.Action {
	case Accept:
		return decoded.Pairs, nil
	case Fail:
		return nil, decision.Err
	default:
		return s.heal(decoded.Diagnosis)
	}
}

func (s *store[K, V]) recoverRead(readErr error) ([]Pair[K, V], error) {
	if errors.Is(readErr, iofs.ErrNotExist) {
		s.log.Warn("snapshot disappeared, recreating empty")

		return nil, s.writeSnapshot(nil)
	}

	if s.throwOnCorruption || !s.recoverReadErrors {
		return nil, fmt.Errorf("read snapshot %q: %w", s.path, readErr)
	}

	s.log.Warn("snapshot unreadable, resetting to empty", "error", readErr)

	return nil, s.writeSnapshot(nil)
}

// heal overwrites the file with the persisted set and re-reads it.
// If the re-read is still not intact the load continues with no pairs.
func (s *store[K, V]) heal(diag Diagnosis) ([]Pair[K, V], error) {
	s.log.Warn("snapshot corrupted, restoring from memory",
		"kind", diag.Kind.String(),
		"offending", len(diag.Offending),
		"cause", diag.Cause,
		"restored", s.persisted.Len(),
	)

	err := s.flush()
	if err != nil {
		return nil, fmt.Errorf("heal %s corruption: %w", diag.Kind, err)
	}

	data, err := s.fsys.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", s.path, err)
	}

	decoded := Decode[K, V](data)
	if decoded.Kind != Intact {
		s.log.Error("snapshot still corrupted after repair, continuing empty", "kind", decoded.Kind.String())

		return nil, nil
	}

	return decoded.Pairs, nil
}

func (s *store[K, V]) writeSnapshot(pairs []Pair[K, V]) error {
	data, err := Encode(pairs)
	if err != nil {
		return err
	}

	err = s.fsys.WriteFileAtomic(s.path, data)
	if err != nil {
		return fmt.Errorf("write snapshot %q: %w", s.path, err)
	}

	s.log.Debug("snapshot written", "entries", len(pairs), "bytes", len(data))

	return nil
}

// flush rewrites the snapshot from the persisted set.
func (s *store[K, V]) flush() error {
	return s.writeSnapshot(s.pairs())
}

func (s *store[K, V]) persistKey(key K, value V) error {
	s.persisted.Set(key, value)

	return s.flush()
}

// dropKey removes key from the persisted set and every entry for key from
// the file.
//
// When the file no longer holds key (edited out of band or repaired), the
// whole persisted set is written instead, discarding other external edits.
func (s *store[K, V]) dropKey(key K) error {
	s.persisted.Delete(key)

	current, err := s.readSnapshot()
	if err != nil {
		return err
	}

	kept := slices.DeleteFunc(current, func(p Pair[K, V]) bool { return p.Key == key })
	if len(kept) == len(current) {
		s.log.Debug("dropped key not on disk, rewriting persisted set")

		return s.flush()
	}

	return s.writeSnapshot(kept)
}

func (s *store[K, V]) removeFile() error {
	err := s.fsys.Remove(s.path)
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("remove snapshot %q: %w", s.path, err)
	}

	s.log.Info("snapshot removed")

	return nil
}

// pairs returns the persisted set in insertion order.
func (s *store[K, V]) pairs() []Pair[K, V] {
	out := make([]Pair[K, V], 0, s.persisted.Len())
	for el := s.persisted.Oldest(); el != nil; el = el.Next() {
		out = append(out, Pair[K, V]{Key: el.Key, Value: el.Value})
	}

	return out
}
