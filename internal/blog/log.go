// Package blog wraps zerolog with the process-wide logger and the
// context propagation helpers used to attach request-scoped fields
// (method name, user_id being served) along an RPC call's context.
package blog

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetDebug raises the global log level to debug.
func SetDebug() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

type loggerKey struct{}

// WithLogger attaches lg to ctx, for handlers that want to pass a
// request-scoped logger down a call chain.
func WithLogger(ctx context.Context, lg zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, &lg)
}

// FromContext returns the logger attached to ctx, falling back to Logger
// if none was attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if lg, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
		return lg
	}
	return &Logger
}

// ForMethod returns a child logger tagged with an RPC method name, used
// to scope every log line a handler emits to the call it's serving.
func ForMethod(method string) zerolog.Logger {
	return Logger.With().Str("method", method).Logger()
}

// ForUser returns a child logger additionally tagged with the user_id a
// worker call is serving.
func ForUser(method string, userID uint64) zerolog.Logger {
	return Logger.With().Str("method", method).Uint64("user_id", userID).Logger()
}
