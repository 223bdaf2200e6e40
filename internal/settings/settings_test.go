package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.ServiceAddress != "127.0.0.1:2579" {
		t.Errorf("ServiceAddress = %q", r.ServiceAddress)
	}
	if r.ConfigPath != filepath.Join(dir, "periscope.toml") {
		t.Errorf("ConfigPath = %q", r.ConfigPath)
	}
	if r.FrameInterval != time.Second/30 {
		t.Errorf("FrameInterval = %v, want 1/30s", r.FrameInterval)
	}
	if r.FetchTimeout != 0 {
		t.Errorf("FetchTimeout = %v, want 0 (engine default)", r.FetchTimeout)
	}
	if r.Verbose {
		t.Error("Verbose defaults to false")
	}
}

func TestResolve_FromFile(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `
service:
  address: 192.168.1.40:2579
  fetch_timeout_ms: 500
  degraded_after: 5
overlay:
  config: overlays/main.toml
  fps: 60
verbose: true
`)

	r, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.ServiceAddress != "192.168.1.40:2579" {
		t.Errorf("ServiceAddress = %q", r.ServiceAddress)
	}
	if r.FetchTimeout != 500*time.Millisecond {
		t.Errorf("FetchTimeout = %v", r.FetchTimeout)
	}
	if r.DegradedAfter != 5 {
		t.Errorf("DegradedAfter = %d", r.DegradedAfter)
	}
	if r.ConfigPath != filepath.Join(dir, "overlays", "main.toml") {
		t.Errorf("ConfigPath = %q", r.ConfigPath)
	}
	if r.FrameInterval != time.Second/60 {
		t.Errorf("FrameInterval = %v", r.FrameInterval)
	}
	if !r.Verbose {
		t.Error("Verbose not picked up")
	}
}

func TestResolve_RejectsNegativeValues(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "overlay:\n  fps: -1\n")

	if _, err := Resolve(dir); err == nil {
		t.Fatal("Resolve accepted a negative fps")
	}
}

func TestLoadOptional_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "service: [not a mapping\n")

	if _, err := LoadOptional(dir); err == nil {
		t.Fatal("LoadOptional accepted malformed YAML")
	}
}
