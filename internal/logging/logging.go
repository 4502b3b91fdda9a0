// Package logging builds the structured logger of the storir command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cwbudde/algo-storir/internal/config"
)

// Logger is a slog.Logger that owns its output.
type Logger struct {
	*slog.Logger
	LogFile string // empty when writing to a standard stream
	closer  io.Closer
}

// New builds a logger from the logging section. Output "stderr" and
// "stdout" select the standard streams; anything else is a file path that
// is rotated with lumberjack.
func New(cfg config.LoggingConfig) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.SlogLevel()

	l := &Logger{}
	var w io.Writer
	switch cfg.Output {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		lj := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w, l.LogFile, l.closer = lj, lj.Filename, lj
	}

	l.Logger = slog.New(newHandler(w, cfg.Format, level))
	if l.LogFile != "" {
		l.logBuild()
	}
	return l, nil
}

// NewWriter builds a logger on an arbitrary writer.
func NewWriter(w io.Writer, format string, level slog.Level) *Logger {
	return &Logger{Logger: slog.New(newHandler(w, format, level))}
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// logBuild starts a log file with the system and build information.
func (l *Logger) logBuild() {
	l.Info("system information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))

	if bi, ok := debug.ReadBuildInfo(); ok {
		var deps []any
		for _, dep := range bi.Deps {
			deps = append(deps, slog.String(dep.Path, dep.Version))
		}
		l.Info("build",
			slog.String("go_version", bi.GoVersion),
			slog.String("path", bi.Path),
			slog.Group("dependencies", deps...))
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	if err := l.closer.Close(); err != nil {
		return fmt.Errorf("logging: close %s: %w", l.LogFile, err)
	}
	return nil
}
