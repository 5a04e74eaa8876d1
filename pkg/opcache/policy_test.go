package opcache_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/calvinalkan/opcache/pkg/opcache"
)

func Test_Decide_Accepts_When_Diagnosis_Is_Intact(t *testing.T) {
	t.Parallel()

	for _, throw := range []bool{false, true} {
		d := opcache.Decide(opcache.Diagnosis{Kind: opcache.Intact}, "/x", throw)

		if d.Action != opcache.Accept || d.Err != nil {
			t.Fatalf("throw=%v: Decide=%v (err %v), want accept", throw, d.Action, d.Err)
		}
	}
}

func Test_Decide_Heals_Or_Fails_When_Snapshot_Is_Corrupted(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		kind     opcache.CorruptionKind
		sentinel error
	}{
		{kind: opcache.SyntaxCorruption, sentinel: opcache.ErrSyntaxCorruption},
		{kind: opcache.StructuralCorruption, sentinel: opcache.ErrStructuralCorruption},
		{kind: opcache.EntryCorruption, sentinel: opcache.ErrEntryCorruption},
	}

	for _, testCase := range testCases {
		t.Run(testCase.kind.String(), func(t *testing.T) {
			t.Parallel()

			cause := errors.New("boom")
			diag := opcache.Diagnosis{Kind: testCase.kind, Cause: cause}

			heal := opcache.Decide(diag, "/x", false)
			if heal.Action != opcache.Heal || heal.Err != nil {
				t.Fatalf("tolerant Decide=%v (err %v), want heal", heal.Action, heal.Err)
			}

			fail := opcache.Decide(diag, "/x", true)
			if fail.Action != opcache.Fail || fail.Err == nil {
				t.Fatalf("strict Decide=%v (err %v), want fail", fail.Action, fail.Err)
			}

			if fail.Err.Kind != testCase.kind || fail.Err.Path != "/x" {
				t.Fatalf("Err=%+v, want kind %s at /x", fail.Err, testCase.kind)
			}

			var err error = fail.Err
			if !errors.Is(err, opcache.ErrCorrupt) || !errors.Is(err, testCase.sentinel) || !errors.Is(err, cause) {
				t.Fatalf("errors.Is(%v) does not match ErrCorrupt, kind sentinel and cause", err)
			}

			for _, other := range []error{opcache.ErrSyntaxCorruption, opcache.ErrStructuralCorruption, opcache.ErrEntryCorruption} {
				if other != testCase.sentinel && errors.Is(err, other) {
					t.Fatalf("errors.Is(%v, %v)=true, want false", err, other)
				}
			}
		})
	}
}

func Test_CorruptionError_Lists_Offending_Items_When_Entries_Are_Corrupted(t *testing.T) {
	t.Parallel()

	err := &opcache.CorruptionError{
		Kind: opcache.EntryCorruption,
		Path: "/tmp/c.json",
		Offending: []opcache.Offense{
			{Index: 0, Raw: []byte(`{"boo":"far"}`)},
			{Index: 2, Raw: []byte(`7`)},
		},
	}

	msg := err.Error()
	for _, want := range []string{"/tmp/c.json", "the following items have been corrupted", `[0] {"boo":"far"}`, "[2] 7"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Error()=%q, want it to contain %q", msg, want)
		}
	}
}

func Test_Action_String_Returns_Name_When_Known(t *testing.T) {
	t.Parallel()

	for action, want := range map[opcache.Action]string{
		opcache.Accept:    "accept",
		opcache.Fail:      "fail",
		opcache.Heal:      "heal",
		opcache.Action(9): "unknown",
	} {
		if got := action.String(); got != want {
			t.Fatalf("String()=%q, want=%q", got, want)
		}
	}
}
