package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// parseValue interprets a command-line value as JSON when it is valid
// JSON, otherwise as a plain string. "42" is a number, "hello" a string,
// and "\"42\"" the string 42.
func parseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return raw
	}

	var v any

	err := json.Unmarshal([]byte(trimmed), &v)
	if err != nil {
		return raw
	}

	return v
}

// formatValue renders a cached value as compact JSON.
func formatValue(v any) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
