// Package output provides deterministic JSON encoding for CLI responses.
// Identical inputs produce byte-identical output, which keeps snapshot tests
// and diff-based tooling stable.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Format represents the CLI output format
type Format string

const (
	// JSON outputs machine-readable JSON
	JSON Format = "json"
	// Human outputs a compact human-readable rendering
	Human Format = "human"
)

// ParseFormat converts a string to a Format, defaulting to JSON
func ParseFormat(s string) Format {
	if s == string(Human) {
		return Human
	}
	return JSON
}

// EncodeJSON renders v as indented JSON with stable key ordering.
// encoding/json sorts map keys and preserves struct field order, so encoding
// the same value twice yields identical bytes.
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes v and writes it to w
func WriteJSON(w io.Writer, v interface{}) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteLines writes one line per entry, for human format
func WriteLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
