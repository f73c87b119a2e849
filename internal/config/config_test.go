package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/irregulars/internal/model"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Practice.Mode != nil || cfg.History.Limit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[practice]\nmode = \"full\"\ncount = 20\nfeedback-ms = 800\n\n[history]\nlimit = 30\n\n[log]\nlevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *cfg.Practice.Mode != "full" || *cfg.Practice.Count != 20 || *cfg.Practice.FeedbackMs != 800 {
		t.Fatalf("unexpected practice config: %+v", cfg.Practice)
	}
	if *cfg.History.Limit != 30 || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected history/log config: %+v %+v", cfg.History, cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	good := model.Config{Mode: model.ModeShort, ShortCount: 15, FeedbackMs: 1200, HistoryLimit: 50, LogLevel: "warn"}
	if err := Validate(good); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}
	bad := good
	bad.Mode = "endless"
	bad.ShortCount = 0
	err := Validate(bad)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "Mode") || !strings.Contains(err.Error(), "ShortCount") {
		t.Fatalf("expected both fields reported: %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "irregulars", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "irregulars", "irregulars.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
