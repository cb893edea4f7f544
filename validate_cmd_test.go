package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	printValidation(&buf, &tts.ValidationResult{
		Available: true,
		Details:   map[string]string{"voices": "7", "region": "eastus"},
	})

	out := buf.String()
	if strings.Index(out, "region") > strings.Index(out, "voices") {
		t.Errorf("details are not sorted:\n%s", out)
	}
	if !strings.Contains(out, "accepted") {
		t.Errorf("missing success line:\n%s", out)
	}

	buf.Reset()
	printValidation(&buf, &tts.ValidationResult{
		Details:  map[string]string{"region": "eastus"},
		Guidance: "Set TTSGATE_KEY.",
	})
	if out := buf.String(); strings.Contains(out, "accepted") || !strings.Contains(out, "TTSGATE_KEY") {
		t.Errorf("unexpected failure output:\n%s", out)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	configFile = filepath.Join(t.TempDir(), "nested", "ttsgate.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile: %v", err)
	}

	info, err := os.Stat(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	if err := os.WriteFile(configFile, []byte("region: westeurope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("second ensureConfigFile: %v", err)
	}
	if b, _ := os.ReadFile(configFile); string(b) != "region: westeurope\n" {
		t.Errorf("existing config was overwritten: %q", b)
	}

	configFile = filepath.Join(t.TempDir(), "ttsgate.toml")
	if err := ensureConfigFile(); err == nil {
		t.Error("expected an error for a .toml config")
	}
}
