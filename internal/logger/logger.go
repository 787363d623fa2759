package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the name of the log file kept in the log directory.
const FileName = "server.log"

// Options configures a Logger.
type Options struct {
	Level     string // trace, debug, info, warn, error
	Format    string // json or console
	Directory string // empty disables the log file
	Output    io.Writer
}

// Logger provides leveled structured logging to stdout and a log file.
type Logger struct {
	zerolog.Logger

	path string
	file *os.File
	mu   sync.Mutex
}

// New creates a Logger and ensures the log directory exists.
func New(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	l := &Logger{}
	if opts.Directory != "" {
		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		l.path = filepath.Join(opts.Directory, FileName)
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", l.path, err)
		}
		l.file = file
	}

	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	if l.file != nil {
		// The file always receives JSON lines.
		out = zerolog.MultiLevelWriter(out, l.file)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	l.Logger = zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
	return l, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With().Str("component", name).Logger(), path: l.path, file: l.file}
}

// Path returns the log file path, or "" when file logging is disabled.
func (l *Logger) Path() string {
	return l.path
}

// CleanLogs truncates the log file.
func (l *Logger) CleanLogs() error {
	if l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate log file: %w", err)
	}
	l.Info().Msg("log file has been cleared")
	return nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
