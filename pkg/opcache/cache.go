package opcache

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ClearMode selects what [Cache.Clear] does to the snapshot file.
type ClearMode uint8

const (
	// ClearDefault empties memory and leaves the file alone.
	ClearDefault ClearMode = iota
	// ClearPersist behaves exactly like ClearDefault. It does not write an
	// empty snapshot.
	ClearPersist
	// ClearNoPersist empties memory and deletes the snapshot file.
	// The next [Open] on the same path recreates it empty.
	ClearNoPersist
)

// Cache is an insertion-ordered map whose entries can individually be
// mirrored to a snapshot file.
//
// Reads never touch the disk. Mutations touch it only when asked to
// persist and a path is configured.
//
// A Cache is not safe for concurrent use; callers must serialize access.
type Cache[K comparable, V any] struct {
	entries *orderedmap.OrderedMap[K, V]
	store   *store[K, V] // nil when memory-only
	err     error
}

// New returns an empty memory-only cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: orderedmap.New[K, V]()}
}

// Open returns a cache seeded from the snapshot at opts.Path.
//
// The file is created containing "[]" if it does not exist. A malformed
// snapshot is repaired, or reported as a [CorruptionError] when
// opts.ThrowOnCorruption is set. A rejection from opts.Validate is
// returned as a [ValidationError]. In both error cases no cache is returned.
//
// With an empty opts.Path, Open is equivalent to [New].
func Open[K comparable, V any](opts Options[K, V]) (*Cache[K, V], error) {
	err := opts.validate()
	if err != nil {
		return nil, err
	}

	c := New[K, V]()
	if opts.Path == "" {
		return c, nil
	}

	opts = opts.withDefaults()
	s := newStore(opts)

	pairs, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		c.entries.Set(p.Key, p.Value)
	}

	c.store = s

	return c, nil
}

// Path returns the snapshot path, or "" for a memory-only cache.
func (c *Cache[K, V]) Path() string {
	if c.store == nil {
		return ""
	}

	return c.store.path
}

// Get returns the value for key and whether it was present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.entries.Get(key)
}

// Has reports whether key is present.
func (c *Cache[K, V]) Has(key K) bool {
	_, ok := c.entries.Get(key)

	return ok
}

// Len returns the number of entries in memory.
func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

// Set stores value under key and returns c for chaining.
//
// An existing key keeps its position. With persist, the pair is also
// added to the persisted set and the snapshot is rewritten; a write
// failure is reported by [Cache.Err].
func (c *Cache[K, V]) Set(key K, value V, persist bool) *Cache[K, V] {
	if persist && c.store != nil {
		c.record(c.store.persistKey(key, value))
	}

	c.entries.Set(key, value)

	return c
}

// Delete removes key and reports whether it was present in memory.
//
// With persist, key is also dropped from the persisted set and the
// snapshot; a write failure is reported by [Cache.Err].
func (c *Cache[K, V]) Delete(key K, persist bool) bool {
	if persist && c.store != nil {
		c.record(c.store.dropKey(key))
	}

	_, ok := c.entries.Delete(key)

	return ok
}

// Clear removes every entry from memory. The persisted set is kept, so a
// later persisting write still carries previously persisted pairs.
//
// Only [ClearNoPersist] touches the disk: it deletes the snapshot file.
func (c *Cache[K, V]) Clear(mode ClearMode) {
	c.entries = orderedmap.New[K, V]()

	if mode == ClearNoPersist && c.store != nil {
		c.record(c.store.removeFile())
	}
}

// Persist rewrites the snapshot from the persisted set, overwriting any
// out-of-band edits. A successful Persist also clears [Cache.Err].
func (c *Cache[K, V]) Persist() error {
	if c.store == nil {
		return nil
	}

	err := c.store.flush()
	if err != nil {
		return err
	}

	c.err = nil

	return nil
}

// Err returns the first durability error from Set, Delete or Clear since
// the cache was opened or since the last successful [Cache.Persist].
func (c *Cache[K, V]) Err() error {
	return c.err
}

// Persisted returns a copy of the persisted set in insertion order.
// It is nil for a memory-only cache.
func (c *Cache[K, V]) Persisted() []Pair[K, V] {
	if c.store == nil {
		return nil
	}

	return c.store.pairs()
}

// All iterates over entries in insertion order.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for el := c.entries.Oldest(); el != nil; {
			next := el.Next()
			if !yield(el.Key, el.Value) {
				return
			}

			el = next
		}
	}
}

// Keys iterates over keys in insertion order.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over values in insertion order.
func (c *Cache[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range c.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Entries returns a copy of all entries in insertion order.
func (c *Cache[K, V]) Entries() []Pair[K, V] {
	out := make([]Pair[K, V], 0, c.entries.Len())
	for k, v := range c.All() {
		out = append(out, Pair[K, V]{Key: k, Value: v})
	}

	return out
}

// ForEach calls fn for every entry in insertion order.
func (c *Cache[K, V]) ForEach(fn func(value V, key K)) {
	for k, v := range c.All() {
		fn(v, k)
	}
}

func (c *Cache[K, V]) record(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}
