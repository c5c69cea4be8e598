package ports

import "context"

// Fields is the structured payload attached to a log entry.
type Fields = map[string]interface{}

// Logger is the logging contract used by the service layer and the adapters.
// The matching and analytics packages are pure and never log.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...Fields)
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...Fields)
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...Fields)
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...Fields)
}
