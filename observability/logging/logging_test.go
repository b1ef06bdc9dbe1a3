package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithOptions("pagectl", "test", Options{Output: &buf})
	logger.Warn("ledger operation failed", slog.String("op", "mint"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["severity"] != "WARN" || line["message"] != "ledger operation failed" {
		t.Fatalf("unexpected line %v", line)
	}
	if line["service"] != "pagectl" || line["env"] != "test" || line["op"] != "mint" {
		t.Fatalf("missing attributes in %v", line)
	}
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.log")
	logger := SetupWithOptions("pagectl", "", Options{Output: &bytes.Buffer{}, File: path, MaxSizeMB: 1})
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(data, []byte(`"message":"hello"`)) {
		t.Fatalf("log file missing line: %s", data)
	}
}

func TestMaskField(t *testing.T) {
	if got := MaskField("op", "mint"); got.Value.String() != "mint" {
		t.Fatalf("allowlisted key masked: %v", got)
	}
	if got := MaskField("headers", "authorization=secret"); got.Value.String() != RedactedValue {
		t.Fatalf("sensitive key not masked: %v", got)
	}
	if got := MaskField("headers", ""); got.Value.String() != "" {
		t.Fatalf("empty value should pass through: %v", got)
	}
}
