package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/term"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "multiencode.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.With("run_id", "abc123").Warn("to file %d", 7)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(b), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %v (%s)", err, b)
	}
	if entry["@message"] != "to file 7" {
		t.Errorf("@message = %v", entry["@message"])
	}
	if entry["@level"] != "warn" {
		t.Errorf("@level = %v", entry["@level"])
	}
	if entry["run_id"] != "abc123" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
}

func TestLogger_ErrorGoesToStderr(t *testing.T) {
	term.Configure(config.ColorNever)
	var out, errOut bytes.Buffer
	l := New(&out, &errOut)
	l.Info("hello")
	l.Error("boom")
	l.Debug(false, "hidden")
	l.Debug(true, "shown")

	if !strings.Contains(out.String(), "[INFO] hello") {
		t.Errorf("stdout = %q", out.String())
	}
	if strings.Contains(out.String(), "boom") {
		t.Error("error line should not be on stdout")
	}
	if !strings.Contains(errOut.String(), "[ERROR] boom") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Error("Debug(false) should be a no-op")
	}
	if !strings.Contains(out.String(), "[DEBUG] shown") {
		t.Errorf("Debug(true) missing: %q", out.String())
	}
}
