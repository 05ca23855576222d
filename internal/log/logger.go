package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	once   sync.Once
	logger *slog.Logger
	closer io.Closer
)

// FileOptions controls the rotating log file written alongside stdout.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup initializes the global logger writing JSON to stdout.
// An unknown level falls back to INFO.
func Setup(level string) {
	SetupWithFile(level, FileOptions{})
}

// SetupWithFile initializes the global logger. When opts.Path is set, records
// are also written to a size/age rotated file.
func SetupWithFile(level string, opts FileOptions) {
	once.Do(func() {
		var w io.Writer = os.Stdout
		if opts.Path != "" {
			lj := &lumberjack.Logger{
				Filename:   opts.Path,
				MaxSize:    orDefault(opts.MaxSizeMB, 50),
				MaxBackups: orDefault(opts.MaxBackups, 7),
				MaxAge:     orDefault(opts.MaxAgeDays, 7),
				LocalTime:  true,
			}
			closer = lj
			w = io.MultiWriter(os.Stdout, lj)
		}
		logger = newLogger(w, level)
		slog.SetDefault(logger)
	})
}

// Close flushes and closes the rotating file, if any.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a config level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Get returns the configured logger, or a default one if Setup hasn't been called.
func Get() *slog.Logger {
	if logger == nil {
		Setup("INFO")
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithCommand returns a logger tagged with a command's id and kind.
func WithCommand(id, kind string) *slog.Logger {
	return Get().With(slog.String("command_id", id), slog.String("kind", kind))
}

// WithCycle returns a logger with the cycle_id field set.
func WithCycle(id string) *slog.Logger {
	return Get().With(slog.String("cycle_id", id))
}

// Info logs at INFO level.
func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

// Warn logs at WARN level.
func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

// Error logs at ERROR level.
func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}
