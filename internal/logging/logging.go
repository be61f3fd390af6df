// Package logging defines the small structured-logging interface the rest of
// the application depends on, plus an slog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are interpreted
// as key-value pairs, e.g.:
//
//	log.Info(ctx, "observation saved", "observer", id)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
