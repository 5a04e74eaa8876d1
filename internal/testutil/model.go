// Package testutil provides an in-memory oracle for cache semantics and
// helpers that drive it from fuzz input.
//
// The [Model] is the source of truth for what a cache should hold in memory
// and on disk after any sequence of operations. Tests replay the same
// operations against a real cache and compare.
package testutil

import (
	"fmt"
	"slices"

	"github.com/calvinalkan/opcache/pkg/opcache"
)

// OpKind identifies a cache mutation.
type OpKind uint8

const (
	OpSet OpKind = iota
	OpDelete
	OpClear
	OpPersist
	OpReopen

	opKindCount
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	case OpClear:
		return "clear"
	case OpPersist:
		return "persist"
	case OpReopen:
		return "reopen"
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// Op is one step of a generated scenario.
type Op struct {
	Kind       OpKind
	Key        string
	Value      int
	Persist    bool
	RemoveFile bool
}

func (o Op) String() string {
	switch o.Kind {
	case OpSet:
		return fmt.Sprintf("set(%s, %d, persist=%v)", o.Key, o.Value, o.Persist)
	case OpDelete:
		return fmt.Sprintf("delete(%s, persist=%v)", o.Key, o.Persist)
	case OpClear:
		return fmt.Sprintf("clear(removeFile=%v)", o.RemoveFile)
	default:
		return o.Kind.String()
	}
}

// Model mirrors a cache[string]int with a snapshot file.
//
// The file content is tracked apart from the persisted set: after a reopen
// the file still holds what was loaded while the persisted set starts over,
// and a persisting delete splices the file rather than rewriting it.
type Model struct {
	mem        orderedPairs
	persisted  orderedPairs
	disk       orderedPairs
	fileExists bool

	persistLoaded bool
}

// NewModel returns the state of a cache freshly opened on a missing file.
// With persistLoaded, a reopen adds the loaded pairs to the persisted set.
func NewModel(persistLoaded bool) *Model {
	return &Model{fileExists: true, persistLoaded: persistLoaded}
}

// Apply performs op and returns what Delete would report (false otherwise).
func (m *Model) Apply(op Op) bool {
	switch op.Kind {
	case OpSet:
		m.mem.set(op.Key, op.Value)

		if op.Persist {
			m.persisted.set(op.Key, op.Value)
			m.writePersisted()
		}
	case OpDelete:
		existed := m.mem.delete(op.Key)

		if op.Persist {
			m.persisted.delete(op.Key)
			m.dropFromDisk(op.Key)
		}

		return existed
	case OpClear:
		m.mem = nil

		if op.RemoveFile {
			m.disk = nil
			m.fileExists = false
		}
	case OpPersist:
		m.writePersisted()
	case OpReopen:
		if !m.fileExists {
			m.disk = nil
			m.fileExists = true
		}

		m.mem = slices.Clone(m.disk)
		m.persisted = nil

		if m.persistLoaded {
			m.persisted = slices.Clone(m.disk)
		}
	}

	return false
}

func (m *Model) writePersisted() {
	m.disk = slices.Clone(m.persisted)
	m.fileExists = true
}

// dropFromDisk splices key out of the file, or writes the persisted set
// when the file does not hold key. A missing file reads as empty.
func (m *Model) dropFromDisk(key string) {
	if !m.fileExists {
		m.disk = nil
	}

	if !m.disk.delete(key) {
		m.writePersisted()

		return
	}

	m.fileExists = true
}

// Entries returns the expected in-memory entries in insertion order.
func (m *Model) Entries() []opcache.Pair[string, int] { return slices.Clone(m.mem) }

// Persisted returns the expected persisted set in insertion order.
func (m *Model) Persisted() []opcache.Pair[string, int] { return slices.Clone(m.persisted) }

// Snapshot returns the expected file content and whether the file exists.
func (m *Model) Snapshot() (string, bool) {
	if !m.fileExists {
		return "", false
	}

	data, err := opcache.Encode(m.disk)
	if err != nil {
		panic(err) // ints and strings always encode
	}

	return string(data), true
}

type orderedPairs []opcache.Pair[string, int]

func (p *orderedPairs) set(k string, v int) {
	i := slices.IndexFunc(*p, func(e opcache.Pair[string, int]) bool { return e.Key == k })
	if i >= 0 {
		(*p)[i].Value = v

		return
	}

	*p = append(*p, opcache.Pair[string, int]{Key: k, Value: v})
}

func (p *orderedPairs) delete(k string) bool {
	i := slices.IndexFunc(*p, func(e opcache.Pair[string, int]) bool { return e.Key == k })
	if i < 0 {
		return false
	}

	*p = slices.Delete(*p, i, i+1)

	return true
}
