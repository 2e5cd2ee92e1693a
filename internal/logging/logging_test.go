package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("dropped", nil)
	logger.Info("dropped", nil)
	logger.Warn("kept", nil)
	logger.Error("kept", nil)

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("Expected 2 log lines, got %d: %q", lines, buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("Built module collection", map[string]interface{}{"modules": 4})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", buf.String(), err)
	}
	if entry.Level != "info" || entry.Message != "Built module collection" {
		t.Errorf("Unexpected entry %+v", entry)
	}
	if entry.Fields["modules"] != float64(4) {
		t.Errorf("Expected modules field, got %v", entry.Fields)
	}
}

func TestHumanOutputSortsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("message", map[string]interface{}{"zebra": 1, "alpha": 2})

	out := buf.String()
	if !strings.Contains(out, "alpha=2, zebra=1") {
		t.Errorf("Expected fields sorted by key, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != DebugLevel {
		t.Error("Expected debug level")
	}
	if ParseLevel("nonsense") != InfoLevel {
		t.Error("Expected fallback to info")
	}
}

func TestDiscardLogger(t *testing.T) {
	// Must not panic and must not write anywhere visible.
	logger := NewDiscardLogger()
	logger.Error("dropped", map[string]interface{}{"key": "value"})
}
