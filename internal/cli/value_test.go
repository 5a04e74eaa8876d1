package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_ParseValue_Prefers_Json_When_Input_Is_Valid_Json(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want any
	}{
		{in: "42", want: 42.0},
		{in: "-1.5", want: -1.5},
		{in: "true", want: true},
		{in: "null", want: nil},
		{in: `"42"`, want: "42"},
		{in: `[1,"a"]`, want: []any{1.0, "a"}},
		{in: `{"k":{"n":null}}`, want: map[string]any{"k": map[string]any{"n": nil}}},
		{in: " 7 ", want: 7.0},
		{in: "hello", want: "hello"},
		{in: "hello world", want: "hello world"},
		{in: "{oops", want: "{oops"},
		{in: "", want: ""},
		{in: "   ", want: "   "},
	}

	for _, testCase := range testCases {
		got := parseValue(testCase.in)
		if diff := cmp.Diff(testCase.want, got); diff != "" {
			t.Fatalf("parseValue(%q) mismatch (-want +got):\n%s", testCase.in, diff)
		}
	}
}

func Test_FormatValue_Renders_Compact_Json_When_Value_Is_Encodable(t *testing.T) {
	t.Parallel()

	if got, want := formatValue(map[string]any{"b": 1, "a": "<x>"}), `{"a":"<x>","b":1}`; got != want {
		t.Fatalf("formatValue=%s, want=%s", got, want)
	}

	// Unencodable values fall back to fmt formatting.
	if got := formatValue(make(chan int)); got == "" {
		t.Fatal("formatValue(chan) returned empty string")
	}
}
