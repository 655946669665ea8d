// Package logging provides a minimal logging interface and adapters for agentkit.
//
// The Logger interface defines the standard leveled methods (Debug, Info, Warn,
// Error) with slog-style key/value arguments. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NewConsoleLogger, a colored slog console handler (clog)
//   - ZerologAdapter for applications already standardized on zerolog
//   - RuntimeLogger with component/session context and call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewConsoleLogger(logging.LogLevelDebug, os.Stderr)
//	a := agent.New(m, mem, func(o *agent.Options) { o.Logger = logger })
package logging
