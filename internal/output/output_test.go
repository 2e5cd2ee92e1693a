package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	if ParseFormat("human") != Human {
		t.Error("Expected human format")
	}
	if ParseFormat("json") != JSON {
		t.Error("Expected json format")
	}
	if ParseFormat("") != JSON {
		t.Error("Expected json as the default")
	}
}

func TestEncodeJSONDeterministic(t *testing.T) {
	value := map[string]interface{}{
		"zebra": 1,
		"alpha": map[string]string{"b": "2", "a": "1"},
	}

	first, err := EncodeJSON(value)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	second, _ := EncodeJSON(value)
	if !bytes.Equal(first, second) {
		t.Error("Expected byte-identical output for identical input")
	}
	if !strings.Contains(string(first), "\"alpha\"") {
		t.Errorf("Unexpected output %s", first)
	}
}

func TestEncodeJSONNoHTMLEscaping(t *testing.T) {
	data, err := EncodeJSON(map[string]string{"cycle": "a -> b -> a"})
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if strings.Contains(string(data), "\\u003e") {
		t.Errorf("Expected '>' unescaped, got %s", data)
	}
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLines(&buf, []string{"one", "two"}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if buf.String() != "one\ntwo\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
