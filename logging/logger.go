// Package logging provides structured logging for the foresight backend.
// It wraps zap with console + rotating-file output and automatic redaction
// of API keys in logged values.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger and provides structured logging with automatic
// sensitive data redaction.
//
// Example:
//
//	logger, err := NewLogger(true, "app.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("server started", zap.Int("port", 3000))
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
}

// NewLogger creates a new Logger instance configured for the given environment.
//
// When isDevelopment is true the console output is colored and the level is
// debug; otherwise both outputs are JSON at info level. The file output is
// rotated automatically (100MB max, 5 backups, 30 days, compressed).
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	var level zapcore.Level
	if isDevelopment {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.InfoLevel
	}

	core, err := NewMultiCore(level, logFilePath, isDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to create log core: %w", err)
	}

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip this wrapper layer
	)

	return &Logger{
		zap:           zapLogger,
		sugar:         zapLogger.Sugar(),
		isDevelopment: isDevelopment,
		logFilePath:   logFilePath,
	}, nil
}

// NewNopLogger returns a Logger that discards all output. Useful in tests.
func NewNopLogger() *Logger {
	zapLogger := zap.NewNop()
	return &Logger{
		zap:   zapLogger,
		sugar: zapLogger.Sugar(),
	}
}

// Zap returns the underlying zap.Logger for packages that take one directly.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Debug logs a message at debug level with structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(RedactSensitiveData(msg), redactFields(fields)...)
}

// Info logs a message at info level with structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(RedactSensitiveData(msg), redactFields(fields)...)
}

// Warn logs a message at warn level with structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(RedactSensitiveData(msg), redactFields(fields)...)
}

// Error logs a message at error level with structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(RedactSensitiveData(msg), redactFields(fields)...)
}

// Fatal logs a message at fatal level and exits the process.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(RedactSensitiveData(msg), redactFields(fields)...)
}

// Infow logs a message with loosely typed key-value pairs.
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(RedactSensitiveData(msg), keysAndValues...)
}

// Errorw logs an error message with loosely typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(RedactSensitiveData(msg), keysAndValues...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// redactFields applies sensitive data redaction to string field values.
func redactFields(fields []zap.Field) []zap.Field {
	result := make([]zap.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			result[i] = zap.String(f.Key, RedactSensitiveData(f.String))
		} else {
			result[i] = f
		}
	}
	return result
}
