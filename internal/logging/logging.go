// Package logging writes querydesk diagnostics to a size-rotated file
// through lumberjack. The terminal belongs to the TUI, so nothing is logged
// to stderr once the program is running.
package logging

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// OpenFile prepares a size-rotated log file at path: parent directories are
// created (0o700) and the file is created (0o600) so permission problems
// show up here rather than on the first write. One backup is kept when the
// file grows past maxSizeMB; 0 uses lumberjack's default size.
func OpenFile(path string, maxSizeMB int) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("logging: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logging: open file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("logging: open file: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 1,
	}, nil
}

// Options configures New.
type Options struct {
	Path      string
	MaxSizeMB int
	Level     string
	Format    string // "text" or "json"
}

// New builds a logrus logger writing to the rotated file in opts. An empty
// Path discards all output. The returned closer releases the file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	if opts.Path == "" {
		log.SetOutput(io.Discard)
		return log, nopCloser{}, nil
	}

	f, err := OpenFile(opts.Path, opts.MaxSizeMB)
	if err != nil {
		log.SetOutput(io.Discard)
		return log, nopCloser{}, err
	}
	log.SetOutput(f)
	return log, f, nil
}

// Discard returns a logger that drops everything. Used by tests and as the
// fallback when no logger is supplied.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var (
	reURLCreds     = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^/@\s]+@`)
	reMySQLCreds   = regexp.MustCompile(`[^@\s]+@tcp\(`)
	reKVPassword   = regexp.MustCompile(`(?i)(password|pwd)=[^\s;&]+`)
	reJSONPassword = regexp.MustCompile(`(?i)("password"\s*:\s*)"(?:[^"\\]|\\.)*"`)
)

// Redact strips credentials from text before it is logged: URL userinfo,
// MySQL driver DSNs, key=value passwords and JSON "password" members.
func Redact(s string) string {
	s = reURLCreds.ReplaceAllString(s, "${1}***@")
	s = reMySQLCreds.ReplaceAllString(s, "***@tcp(")
	s = reKVPassword.ReplaceAllString(s, "${1}=***")
	s = reJSONPassword.ReplaceAllString(s, `${1}"***"`)
	return s
}

// RedactURL removes userinfo from a URL string, leaving it unchanged if it
// does not parse.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User("***")
	return u.String()
}
