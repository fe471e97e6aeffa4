package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Practice.Difficulty != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadConfigPractice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[practice]\ndifficulty = 4\nword-limit = 30\nshare-key = \"ctrl+s\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Difficulty == nil || *cfg.Practice.Difficulty != 4 {
		t.Fatalf("unexpected difficulty: %v", cfg.Practice.Difficulty)
	}
	if cfg.Practice.WordLimit == nil || *cfg.Practice.WordLimit != 30 {
		t.Fatalf("unexpected word limit: %v", cfg.Practice.WordLimit)
	}
	if cfg.Practice.ShareKey == nil || *cfg.Practice.ShareKey != "ctrl+s" {
		t.Fatalf("unexpected share key: %v", cfg.Practice.ShareKey)
	}
	if cfg.Practice.HistoryFile != nil {
		t.Fatalf("expected unset history file")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice]\nwords = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	if got := DefaultHistoryPath(); got != filepath.Join("/data", "retype", "history.csv") {
		t.Fatalf("unexpected history path %q", got)
	}
	if got := DefaultTextsDBPath(); got != filepath.Join("/data", "retype", "data.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/conf", "retype", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
}
