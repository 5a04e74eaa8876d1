package opcache

// Action is what the store does with a decoded snapshot.
type Action uint8

const (
	// Accept uses the decoded pairs as-is.
	Accept Action = iota
	// Fail aborts the load with Decision.Err.
	Fail
	// Heal overwrites the file from memory and re-reads it.
	Heal
)

func (a Action) String() string {
	switch a {
	case Accept:
		return "accept"
	case Fail:
		return "fail"
	case Heal:
		return "heal"
	default:
		return "unknown"
	}
}

// Decision is the outcome of [Decide].
type Decision struct {
	Action Action
	// Err is set only when Action is [Fail].
	Err *CorruptionError
}

// Decide applies the corruption policy to a diagnosis. It performs no I/O.
//
// Intact data is always accepted. Corrupted data fails the load when
// throwOnCorruption is set and is healed otherwise.
func Decide(diag Diagnosis, path string, throwOnCorruption bool) Decision {
	if diag.Kind == Intact {
		return Decision{Action: Accept}
	}

	if !throwOnCorruption {
		return Decision{Action: Heal}
	}

	return Decision{
		Action: Fail,
		Err: &CorruptionError{
			Kind:      diag.Kind,
			Path:      path,
			Offending: diag.Offending,
			Cause:     diag.Cause,
		},
	}
}
