// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for development (console) and production
// (json) environments and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the request's RayID from a Fiber context and attaches it to the
// log entry, so all lines emitted for one list request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Membership update failed", zap.Error(err))
package logger
