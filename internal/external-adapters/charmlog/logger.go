// Package charmlog adapts charmbracelet/log to the domain Logger interface.
package charmlog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// Logger writes structured, leveled log lines
type Logger struct {
	l *log.Logger
}

// New creates a logger writing to w at the given level ("debug", "info", "warn", "error")
func New(w io.Writer, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := log.NewWithOptions(w, log.Options{
		Prefix:          "cvpack",
		Level:           lvl,
		ReportTimestamp: lvl == log.DebugLevel,
	})
	return &Logger{l: l}, nil
}

// ParseLevel maps a level name onto a charmbracelet/log level.
// An empty name selects info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.l.Debug(msg, keyvals(fields)...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.l.Info(msg, keyvals(fields)...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.l.Warn(msg, keyvals(fields)...)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.l.Error(msg, keyvals(fields)...)
}

func keyvals(fields []interfaces.Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

var _ interfaces.Logger = (*Logger)(nil)
