// Package opcache provides an insertion-ordered in-memory cache that can
// mirror selected entries to a JSON snapshot file.
//
// Only entries written with persist=true are durable. They form the
// persisted set, which is kept separately from the full in-memory map and
// rewritten to disk in full on every persisting mutation. On [Open] the
// snapshot is loaded into memory while the persisted set starts empty,
// unless [Options].PersistLoaded asks for the loaded pairs to join it.
//
// # Basic Usage
//
//	cache, err := opcache.Open(opcache.Options[string, any]{
//	    Path: "/var/cache/app/cache.json",
//	})
//	if err != nil {
//	    // corruption (ThrowOnCorruption), validation, or filesystem error
//	}
//
//	cache.Set("session", token, false). // memory only
//	    Set("theme", "dark", true)      // memory and disk
//	if err := cache.Err(); err != nil {
//	    // a persisting write failed
//	}
//
//	cache.Delete("theme", true)
//
// # Snapshot Format
//
// The file holds a compact JSON array of [key, value] arrays:
//
//	[["theme","dark"],["retries",3]]
//
// An empty persisted set is "[]".
//
// # Corruption
//
// [Decode] classifies malformed text as [SyntaxCorruption],
// [StructuralCorruption] or [EntryCorruption]. By default the store heals
// the file by rewriting it from the persisted set; with
// [Options.ThrowOnCorruption] the load fails with a [CorruptionError].
//
// # Concurrency
//
// A [Cache] is single-threaded and its file single-writer. Sharing a path
// between processes is unsupported: the last writer wins.
package opcache
