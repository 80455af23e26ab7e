package logging

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger instance
func InitGlobalLogger(level LogLevel, format string) *Logger {
	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	if format == "json" {
		output = os.Stdout
	}

	globalLogger = NewLogger(level, output)
	return globalLogger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger(InfoLevel, os.Stdout)
	}
	return globalLogger
}

// WithContext creates a logger with context
func WithContext(ctx context.Context) *zerolog.Logger {
	return GetGlobalLogger().WithContext(ctx)
}

// WithModule creates a logger with module field
func WithModule(module string) *zerolog.Logger {
	logger := GetGlobalLogger().logger.With().Str("module", module).Logger()
	return &logger
}

// WithModuleContext creates a logger with module field plus the ids in ctx
func WithModuleContext(ctx context.Context, module string) *zerolog.Logger {
	logger := WithContext(ctx).With().Str("module", module).Logger()
	return &logger
}
