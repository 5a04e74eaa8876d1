package opcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Pair is one cache entry. It encodes as a two-element JSON array
// [key, value], the unit of the snapshot file.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// MarshalJSON encodes p as [key, value].
func (p Pair[K, V]) MarshalJSON() ([]byte, error) {
	return encodeCompact([2]any{p.Key, p.Value})
}

// UnmarshalJSON decodes a [key, value] array into p.
// Anything else (objects, scalars, arrays of another length) is an error.
func (p *Pair[K, V]) UnmarshalJSON(data []byte) error {
	decoded, err := decodePair[K, V](data)
	if err != nil {
		return err
	}

	*p = decoded

	return nil
}

// Offense identifies one snapshot entry that is not a valid pair.
type Offense struct {
	// Index is the position of the entry in the snapshot array.
	Index int
	// Raw is the entry exactly as found on disk.
	Raw json.RawMessage
}

// Diagnosis is the classification of a decoded snapshot.
// Kind is [Intact] when the data can be used as-is.
type Diagnosis struct {
	Kind      CorruptionKind
	Offending []Offense
	Cause     error
}

// Decoded is the result of [Decode]: the pairs that decoded cleanly plus
// a diagnosis of the whole text.
//
// Pairs is only meaningful when Diagnosis.Kind is [Intact]; for
// [EntryCorruption] it holds the well-formed entries for inspection.
type Decoded[K comparable, V any] struct {
	Pairs []Pair[K, V]
	Diagnosis
}

var errNotPair = errors.New("entry is not a [key, value] pair")

// Encode serializes pairs as a compact JSON array of [key, value] arrays.
//
// The output has no trailing newline and does not escape HTML characters.
// A nil or empty slice encodes as "[]".
func Encode[K comparable, V any](pairs []Pair[K, V]) ([]byte, error) {
	rows := make([][2]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, [2]any{p.Key, p.Value})
	}

	data, err := encodeCompact(rows)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return data, nil
}

// Decode parses snapshot text. It never panics and never returns an error;
// malformed input is reported through the returned [Diagnosis].
func Decode[K comparable, V any](data []byte) Decoded[K, V] {
	var top json.RawMessage

	err := json.Unmarshal(data, &top)
	if err != nil {
		return Decoded[K, V]{Diagnosis: Diagnosis{Kind: SyntaxCorruption, Cause: err}}
	}

	if !isJSONArray(top) {
		return Decoded[K, V]{Diagnosis: Diagnosis{
			Kind:  StructuralCorruption,
			Cause: fmt.Errorf("top-level value is %s", jsonKind(top)),
		}}
	}

	var elems []json.RawMessage

	err = json.Unmarshal(top, &elems)
	if err != nil {
		return Decoded[K, V]{Diagnosis: Diagnosis{Kind: StructuralCorruption, Cause: err}}
	}

	out := Decoded[K, V]{Pairs: make([]Pair[K, V], 0, len(elems))}

	for i, raw := range elems {
		p, pairErr := decodePair[K, V](raw)
		if pairErr != nil {
			out.Offending = append(out.Offending, Offense{Index: i, Raw: raw})

			if out.Cause == nil {
				out.Cause = fmt.Errorf("entry %d: %w", i, pairErr)
			}

			continue
		}

		out.Pairs = append(out.Pairs, p)
	}

	if len(out.Offending) > 0 {
		out.Kind = EntryCorruption
	}

	return out
}

func decodePair[K comparable, V any](raw []byte) (Pair[K, V], error) {
	var p Pair[K, V]

	if !isJSONArray(raw) {
		return p, fmt.Errorf("%w: got %s", errNotPair, jsonKind(raw))
	}

	var parts []json.RawMessage

	err := json.Unmarshal(raw, &parts)
	if err != nil {
		return p, fmt.Errorf("%w: %w", errNotPair, err)
	}

	if len(parts) != 2 {
		return p, fmt.Errorf("%w: got %d elements", errNotPair, len(parts))
	}

	err = json.Unmarshal(parts[0], &p.Key)
	if err != nil {
		return p, fmt.Errorf("key: %w", err)
	}

	// An interface-typed K can decode arrays and objects, which cannot be map keys.
	if !hashable(p.Key) {
		return p, fmt.Errorf("%w: key %s is not hashable", errNotPair, parts[0])
	}

	err = json.Unmarshal(parts[1], &p.Value)
	if err != nil {
		return p, fmt.Errorf("value: %w", err)
	}

	return p, nil
}

func hashable(v any) bool {
	if v == nil {
		return true
	}

	return reflect.ValueOf(v).Comparable()
}

func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}

	return trimmed[0]
}

func isJSONArray(raw []byte) bool {
	return firstByte(raw) == '['
}

func jsonKind(raw []byte) string {
	switch firstByte(raw) {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 't', 'f':
		return "a boolean"
	case 'n':
		return "null"
	case 0:
		return "empty"
	default:
		return "a number"
	}
}
