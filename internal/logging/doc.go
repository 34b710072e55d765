// Package logging provides structured logging for co2monitor.
//
// This package wraps a global zap logger with convenience functions. Until
// Initialize is called every function is a no-op, so packages can log freely
// without forcing output on library users or tests.
//
// # Log Levels
//
//   - Debug: frame hex dumps, skipped frames, read timeouts
//   - Info: device open/handshake, readings, sink connections
//   - Warn: failed handshake, publish failures, transient device errors
//   - Error: fatal device errors, startup failures
//
// # Configuration
//
//	if err := logging.Initialize(cfg.Logging); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The CO2MONITOR_LOG_LEVEL environment variable overrides the configured
// level. When logging.file.filename is set, output is also written to a
// rotating file (lumberjack).
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
