package opcache

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by opcache operations.
//
// Callers should use [errors.Is] to check error types:
//
//	c, err := opcache.Open(opts)
//	if errors.Is(err, opcache.ErrCorrupt) {
//	    // ThrowOnCorruption is set and the snapshot is damaged.
//	}
var (
	// ErrCorrupt indicates the snapshot file could not be used as-is.
	// Every [CorruptionError] matches it.
	//
	// Only surfaced when [Options.ThrowOnCorruption] is set; otherwise the
	// file is rewritten from memory.
	//
	// Recovery: fix or delete the file, or open without ThrowOnCorruption.
	ErrCorrupt = errors.New("opcache: corrupt snapshot")

	// ErrSyntaxCorruption indicates the snapshot is not valid JSON.
	ErrSyntaxCorruption = errors.New("opcache: snapshot is not valid JSON")

	// ErrStructuralCorruption indicates the snapshot is valid JSON but not an array.
	ErrStructuralCorruption = errors.New("opcache: snapshot is not an array")

	// ErrEntryCorruption indicates the snapshot array holds entries that are
	// not [key, value] pairs of the cache's types.
	ErrEntryCorruption = errors.New("opcache: snapshot has corrupted entries")

	// ErrValidationRejected indicates [Options.Validate] rejected the loaded data.
	// Every [ValidationError] matches it.
	ErrValidationRejected = errors.New("opcache: validation rejected snapshot")

	// ErrInvalidInput indicates invalid options were provided.
	//
	// This is a programming error.
	ErrInvalidInput = errors.New("opcache: invalid input")
)

// CorruptionKind classifies malformed snapshot data.
type CorruptionKind uint8

const (
	// Intact means the snapshot decoded cleanly.
	Intact CorruptionKind = iota
	// SyntaxCorruption means the text is not parseable JSON.
	SyntaxCorruption
	// StructuralCorruption means the top-level value is not an array.
	StructuralCorruption
	// EntryCorruption means some array elements are not valid pairs.
	EntryCorruption
)

func (k CorruptionKind) String() string {
	switch k {
	case Intact:
		return "intact"
	case SyntaxCorruption:
		return "syntax"
	case StructuralCorruption:
		return "structural"
	case EntryCorruption:
		return "entry"
	default:
		return fmt.Sprintf("CorruptionKind(%d)", uint8(k))
	}
}

func (k CorruptionKind) sentinel() error {
	switch k {
	case SyntaxCorruption:
		return ErrSyntaxCorruption
	case StructuralCorruption:
		return ErrStructuralCorruption
	case EntryCorruption:
		return ErrEntryCorruption
	default:
		return ErrCorrupt
	}
}

// CorruptionError describes a damaged snapshot.
//
// Use errors.Is(err, ErrCorrupt) or the kind sentinels
// ([ErrSyntaxCorruption], [ErrStructuralCorruption], [ErrEntryCorruption])
// to match it.
type CorruptionError struct {
	Kind CorruptionKind
	Path string

	// Offending lists the entries that are not valid pairs.
	// Only set for [EntryCorruption].
	Offending []Offense

	// Cause is the underlying decode error, if any.
	Cause error
}

func (e *CorruptionError) Error() string {
	var b strings.Builder

	b.WriteString(e.Kind.sentinel().Error())

	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}

	if len(e.Offending) > 0 {
		b.WriteString(": the following items have been corrupted: ")

		for i, o := range e.Offending {
			if i > 0 {
				b.WriteString(", ")
			}

			fmt.Fprintf(&b, "[%d] %s", o.Index, o.Raw)
		}
	} else if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Is reports whether target is ErrCorrupt or the sentinel for e.Kind.
func (e *CorruptionError) Is(target error) bool {
	return target == ErrCorrupt || target == e.Kind.sentinel()
}

func (e *CorruptionError) Unwrap() error { return e.Cause }

// ValidationError wraps the error returned by [Options.Validate].
//
// errors.Is matches both [ErrValidationRejected] and the hook's own error.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrValidationRejected.Error(), e.Path, e.Err)
}

// Is reports whether target is ErrValidationRejected.
func (e *ValidationError) Is(target error) bool { return target == ErrValidationRejected }

func (e *ValidationError) Unwrap() error { return e.Err }
