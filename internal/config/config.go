package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvServerURL = "QUERYDESK_SERVER_URL"
	EnvLogLevel  = "QUERYDESK_LOG_LEVEL"
	EnvTheme     = "QUERYDESK_THEME"
)

// DefaultServerURL is where the service listens in a default install.
const DefaultServerURL = "http://localhost:5000"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Theme   string        `yaml:"theme"`
	KeyMode string        `yaml:"keymode"` // "vim" or "standard"
	Editor  EditorConfig  `yaml:"editor"`
	Results ResultsConfig `yaml:"results"`
	Toast   ToastConfig   `yaml:"toast"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig locates the SQL assistant service.
type ServerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // 0 waits indefinitely
}

// EditorConfig holds editor-related settings.
type EditorConfig struct {
	TabSize         int  `yaml:"tab_size"`
	ShowLineNumbers bool `yaml:"show_line_numbers"`
}

// ResultsConfig holds result display settings.
type ResultsConfig struct {
	MaxColumnWidth int `yaml:"max_column_width"`
}

// ToastConfig holds notification settings.
type ToastConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// LogConfig holds diagnostic log settings. An empty Path logs to
// ConfigDir()/querydesk.log.
type LogConfig struct {
	Path      string `yaml:"path,omitempty"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // "text" or "json"
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{URL: DefaultServerURL},
		Theme:   "default",
		KeyMode: "standard",
		Editor: EditorConfig{
			TabSize:         4,
			ShowLineNumbers: true,
		},
		Results: ResultsConfig{
			MaxColumnWidth: 50,
		},
		Toast: ToastConfig{Duration: 3 * time.Second},
		Log: LogConfig{
			Level:     "info",
			Format:    "text",
			MaxSizeMB: 10,
		},
	}
}

// ConfigDir returns the querydesk configuration directory path, typically
// ~/.config/querydesk/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "querydesk"), nil
}

// DefaultPath returns ConfigDir()/config.yaml.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillZero()
	return cfg, nil
}

// LoadDefault loads configuration from DefaultPath.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file settings from the environment. lookup is
// os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := getEnv(lookup, EnvServerURL); ok {
		c.Server.URL = v
	}
	if v, ok := getEnv(lookup, EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := getEnv(lookup, EnvTheme); ok {
		c.Theme = v
	}
}

// ResolveLogPath returns Log.Path, or ConfigDir()/querydesk.log when unset.
func (c *Config) ResolveLogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "querydesk.log"), nil
}

// getEnv reads a non-blank environment variable.
func getEnv(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// fillZero restores defaults for values a file set to zero that have no
// meaningful zero.
func (c *Config) fillZero() {
	def := DefaultConfig()
	if strings.TrimSpace(c.Server.URL) == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Toast.Duration <= 0 {
		c.Toast.Duration = def.Toast.Duration
	}
	if c.Results.MaxColumnWidth <= 0 {
		c.Results.MaxColumnWidth = def.Results.MaxColumnWidth
	}
	if c.Editor.TabSize <= 0 {
		c.Editor.TabSize = def.Editor.TabSize
	}
}
