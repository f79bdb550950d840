package logger

import (
	"context"
	"sync"
)

// ContextKey is an alias used for storing values in context
type ContextKey string

const (
	// LoggerCtxKey is the context key used to store the Logger instance
	LoggerCtxKey ContextKey = "logger"
)

var defaultLogger Logger
var defaultLoggerOnce sync.Once

// ContextWithLogger stores the logger in the context.
func ContextWithLogger(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, log)
}

// FromContext returns the logger attached to the context. If none is found,
// it falls back to a lazily-initialized default logger so components always
// have a usable logger in edge cases where one was not explicitly attached.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if log, ok := ctx.Value(LoggerCtxKey).(Logger); ok && log != nil {
			return log
		}
	}
	return getDefaultLogger()
}

func getDefaultLogger() Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLogger(nil)
	})
	return defaultLogger
}
