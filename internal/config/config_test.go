package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.URL != "http://localhost:5000" {
		t.Errorf("Server.URL = %q, want %q", cfg.Server.URL, "http://localhost:5000")
	}
	if cfg.Server.Timeout != 0 {
		t.Errorf("Server.Timeout = %v, want 0", cfg.Server.Timeout)
	}
	if cfg.Theme != "default" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "default")
	}
	if cfg.KeyMode != "standard" {
		t.Errorf("KeyMode = %q, want %q", cfg.KeyMode, "standard")
	}
	if cfg.Editor.TabSize != 4 {
		t.Errorf("Editor.TabSize = %d, want %d", cfg.Editor.TabSize, 4)
	}
	if !cfg.Editor.ShowLineNumbers {
		t.Error("Editor.ShowLineNumbers = false, want true")
	}
	if cfg.Results.MaxColumnWidth != 50 {
		t.Errorf("Results.MaxColumnWidth = %d, want %d", cfg.Results.MaxColumnWidth, 50)
	}
	if cfg.Toast.Duration != 3*time.Second {
		t.Errorf("Toast.Duration = %v, want 3s", cfg.Toast.Duration)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `server:
  url: https://sql.example.com
  timeout: 30s
theme: monokai
keymode: vim
editor:
  tab_size: 2
  show_line_numbers: false
results:
  max_column_width: 80
toast:
  duration: 5s
log:
  path: /tmp/qd.log
  level: debug
  format: json
  max_size_mb: 2
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.URL != "https://sql.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if cfg.Theme != "monokai" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "monokai")
	}
	if cfg.KeyMode != "vim" {
		t.Errorf("KeyMode = %q, want %q", cfg.KeyMode, "vim")
	}
	if cfg.Editor.TabSize != 2 {
		t.Errorf("Editor.TabSize = %d, want %d", cfg.Editor.TabSize, 2)
	}
	if cfg.Editor.ShowLineNumbers {
		t.Error("Editor.ShowLineNumbers = true, want false")
	}
	if cfg.Results.MaxColumnWidth != 80 {
		t.Errorf("Results.MaxColumnWidth = %d, want %d", cfg.Results.MaxColumnWidth, 80)
	}
	if cfg.Toast.Duration != 5*time.Second {
		t.Errorf("Toast.Duration = %v, want 5s", cfg.Toast.Duration)
	}
	want := LogConfig{Path: "/tmp/qd.log", Level: "debug", Format: "json", MaxSizeMB: 2}
	if cfg.Log != want {
		t.Errorf("Log = %+v, want %+v", cfg.Log, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}

	def := DefaultConfig()
	if !reflect.DeepEqual(cfg, def) {
		t.Errorf("Load(missing) = %+v, want DefaultConfig %+v", cfg, def)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	content := "theme: [\ninvalid:\n  - {broken\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load(invalid YAML) error = nil, want error")
	}
}

func TestLoadPartialYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")

	yaml := `theme: dracula
server:
  url: ""
toast:
  duration: 0s
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Theme != "dracula" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "dracula")
	}
	// Blank or zero values fall back to defaults.
	if cfg.Server.URL != DefaultServerURL {
		t.Errorf("Server.URL = %q, want default", cfg.Server.URL)
	}
	if cfg.Toast.Duration != 3*time.Second {
		t.Errorf("Toast.Duration = %v, want default 3s", cfg.Toast.Duration)
	}
	if cfg.KeyMode != "standard" {
		t.Errorf("KeyMode = %q, want default %q", cfg.KeyMode, "standard")
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	original := DefaultConfig()
	original.Server = ServerConfig{URL: "http://10.0.0.5:8000", Timeout: 15 * time.Second}
	original.Theme = "nord"
	original.KeyMode = "vim"
	original.Toast.Duration = 1500 * time.Millisecond
	original.Log.Format = "json"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("roundtrip mismatch:\n  saved:  %+v\n  loaded: %+v", original, loaded)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}
}

func TestLoadDefault(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpHome, ".config"))

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Theme = "solarized"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if loaded.Theme != "solarized" {
		t.Errorf("Theme = %q, want solarized", loaded.Theme)
	}

	logPath, err := loaded.ResolveLogPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(logPath) != "querydesk.log" || filepath.Dir(logPath) != filepath.Dir(path) {
		t.Errorf("ResolveLogPath() = %q, want querydesk.log beside config", logPath)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvServerURL: "http://remote:9000",
		EnvLogLevel:  "debug",
		EnvTheme:     "   ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	cfg.ApplyEnv(lookup)

	if cfg.Server.URL != "http://remote:9000" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Theme != "default" {
		t.Errorf("blank env value must not override, Theme = %q", cfg.Theme)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QUERYDESK_THEME=nord\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTheme, "")
	os.Unsetenv(EnvTheme)

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv(EnvTheme); got != "nord" {
		t.Errorf("%s = %q, want nord", EnvTheme, got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env must not fail: %v", err)
	}
}
