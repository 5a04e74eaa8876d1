package testutil

// ByteStream reads bytes sequentially from a byte slice.
//
// Used by fuzz tests to deterministically derive operations from fuzz input.
// When the stream is exhausted, all reads return zero values. This ensures
// determinism: the same input always produces the same sequence of values.
type ByteStream struct {
	bytes []byte
	pos   int
}

// NewByteStream creates a stream over the given bytes.
func NewByteStream(b []byte) *ByteStream {
	return &ByteStream{bytes: b}
}

// HasMore reports whether unread bytes remain.
func (s *ByteStream) HasMore() bool {
	return s.pos < len(s.bytes)
}

// NextByte returns the next byte, or 0 if exhausted.
func (s *ByteStream) NextByte() byte {
	if s.pos >= len(s.bytes) {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return v
}

// NextInt returns a non-negative int below maxVal derived from the next byte.
func (s *ByteStream) NextInt(maxVal int) int {
	if maxVal <= 0 {
		return 0
	}

	return int(s.NextByte()) % maxVal
}

// NextBool returns a boolean derived from the next byte.
func (s *ByteStream) NextBool() bool {
	return s.NextByte()&1 == 1
}

// NextKey picks one of keys. A small key space makes overwrites and
// deletes of present keys likely.
func (s *ByteStream) NextKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}

	return keys[s.NextInt(len(keys))]
}

// NextOp returns the next cache operation.
func (s *ByteStream) NextOp(keys []string) Op {
	op := Op{
		Kind:    OpKind(s.NextInt(int(opKindCount))),
		Key:     s.NextKey(keys),
		Persist: s.NextBool(),
		Value:   int(s.NextByte()),
	}

	if op.Kind == OpClear && s.NextInt(3) == 0 {
		op.RemoveFile = true
	}

	return op
}
