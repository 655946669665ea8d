package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/clog"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel accepts "debug", "info", "warn", "warning" and "error"
// (case-insensitive). Anything else yields LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger defines the minimal logging interface for agentkit.
// This allows users to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NewConsoleLogger creates a human friendly, colored console logger. goerr
// values passed as attributes are expanded into their context values.
func NewConsoleLogger(level LogLevel, w io.Writer) Logger {
	return NewSlogAdapter(slog.New(consoleHandler(level, w)))
}

func consoleHandler(level LogLevel, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	return clog.New(
		clog.WithWriter(w),
		clog.WithLevel(slogLevel(level)),
		clog.WithTimeFmt("15:04:05"),
		clog.WithSource(false),
		clog.WithAttrHook(clog.GoerrHook),
	)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CallObserver is implemented by loggers that record model and tool calls as
// dedicated entries (see RuntimeLogger).
type CallObserver interface {
	LogModelCall(model string, tokens int, dur time.Duration, err error)
	LogToolCall(tool string, dur time.Duration, err error)
}

// ModelCall reports a finished model call on l, preferring CallObserver.
func ModelCall(l Logger, model string, tokens int, dur time.Duration, err error) {
	if o, ok := l.(CallObserver); ok {
		o.LogModelCall(model, tokens, dur, err)
		return
	}
	if err != nil {
		l.Error("model.call.error", "model", model, "duration_ms", dur.Milliseconds(), "error", err)
		return
	}
	l.Debug("model.call.success", "model", model, "prompt_tokens", tokens, "duration_ms", dur.Milliseconds())
}

// ToolCall reports a finished tool call on l, preferring CallObserver.
func ToolCall(l Logger, tool string, dur time.Duration, err error) {
	if o, ok := l.(CallObserver); ok {
		o.LogToolCall(tool, dur, err)
		return
	}
	if err != nil {
		l.Error("tool.call.error", "tool", tool, "duration_ms", dur.Milliseconds(), "error", err)
		return
	}
	l.Debug("tool.call.success", "tool", tool, "duration_ms", dur.Milliseconds())
}

// StoreObserver is implemented by loggers that record memory writes as
// dedicated entries.
type StoreObserver interface {
	LogStore(sessionID, role string, dur time.Duration, err error)
}

// MemoryStore reports a finished memory write on l, preferring StoreObserver.
func MemoryStore(l Logger, sessionID, role string, dur time.Duration, err error) {
	if o, ok := l.(StoreObserver); ok {
		o.LogStore(sessionID, role, dur, err)
		return
	}
	if err != nil {
		l.Error("memory.store.error", "session_id", sessionID, "role", role, "duration_ms", dur.Milliseconds(), "error", err)
		return
	}
	l.Debug("memory.store.success", "session_id", sessionID, "role", role, "duration_ms", dur.Milliseconds())
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}
