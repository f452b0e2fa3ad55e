// Package logging provides the logging interface used across the swarm and
// its adapters.
//
//   - Logger interface for dependency injection
//   - SwarmLogger, a slog based logger with component and trace context plus
//     helpers for action and LLM call records
//   - SlogAdapter wrapping an existing *slog.Logger
//   - NoOpLogger for silent operation (tests, minimal setups)
//   - DailyFileWriter, an io.Writer appending to one file per day
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	sw := swarm.New(func(o *swarm.Options) { o.Logger = logger })
package logging
