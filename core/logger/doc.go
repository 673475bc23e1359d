// Package logger provides a structured logging facility based on Zap.
//
// CLI commands log with the console encoder so that sync progress reads well in
// a terminal; the status server can switch to JSON for log shipping.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Sync started", zap.String("bucket", bucket))
//
//	// In a request handler:
//	l := logger.WithRequestID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
