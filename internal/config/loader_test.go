package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parse(defaultLaneRushYAML)
	if err != nil {
		t.Fatalf("embedded defaults failed to parse: %v", err)
	}
	if cfg != DefaultLaneRushConfig() {
		t.Errorf("embedded YAML diverged from DefaultLaneRushConfig():\n%+v\n%+v", cfg, DefaultLaneRushConfig())
	}
}

func TestLoadCustomPathPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := "track:\n  lanes: 5\nscoring:\n  score_per_level: 10\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Track.Lanes != 5 {
		t.Errorf("Track.Lanes = %d, expected 5", cfg.Track.Lanes)
	}
	if cfg.Scoring.ScorePerLevel != 10 {
		t.Errorf("Scoring.ScorePerLevel = %d, expected 10", cfg.Scoring.ScorePerLevel)
	}
	// Untouched keys keep defaults
	if cfg.Car.Width != 40 {
		t.Errorf("Car.Width = %v, expected default 40", cfg.Car.Width)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("track:\n  lanes: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	if err == nil || !strings.Contains(err.Error(), "track.lanes") {
		t.Errorf("expected lanes validation error, got %v", err)
	}
}

func TestParsePreset(t *testing.T) {
	for _, s := range []string{"", "easy", "normal", "hard", "fixed"} {
		if _, err := ParsePreset(s); err != nil {
			t.Errorf("ParsePreset(%q) failed: %v", s, err)
		}
	}
	if _, err := ParsePreset("nightmare"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseEnvDefaults(t *testing.T) {
	t.Setenv("LANERUSH_SSH_ADDR", ":2222")

	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv() failed: %v", err)
	}
	if e.SSHAddr != ":2222" {
		t.Errorf("SSHAddr = %q, expected :2222", e.SSHAddr)
	}
	if e.LogLevel != "info" {
		t.Errorf("LogLevel = %q, expected default info", e.LogLevel)
	}
}
