package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvMissingFileIsFine(t *testing.T) {
	t.Setenv("CALC_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	if err := loadDotEnv(); err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CALC_ADDR=:7000\nCALC_HISTORY_LIMIT=5\n"), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}

	t.Setenv("CALC_ENV_FILE", path)
	t.Setenv("CALC_ADDR", ":9000")
	t.Setenv("CALC_HISTORY_LIMIT", "")
	os.Unsetenv("CALC_HISTORY_LIMIT")

	if err := loadDotEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("CALC_ADDR"); got != ":9000" {
		t.Fatalf("expected process env to win, got %q", got)
	}
	if got := os.Getenv("CALC_HISTORY_LIMIT"); got != "5" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
