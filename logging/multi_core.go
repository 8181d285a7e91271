package logging

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

// NewMultiCore creates a zapcore.Core that tees output to both console and a
// rotating log file.
//
// The file output always uses JSON encoding for structured log processing.
// The console output uses a colored, human-readable format in development
// mode and JSON in production mode.
func NewMultiCore(level zapcore.Level, filePath string, isDev bool) (zapcore.Core, error) {
	fileWriter := NewFileWriter(filePath)
	return newTeeCore(level, zapcore.AddSync(os.Stdout), fileWriter, isDev), nil
}

// NewMultiCoreWithWriters creates a zapcore.Core that tees output to the
// provided writers. Useful for tests and special output destinations.
func NewMultiCoreWithWriters(level zapcore.Level, consoleWriter, fileWriter io.Writer, isDev bool) zapcore.Core {
	return newTeeCore(level, zapcore.AddSync(consoleWriter), zapcore.AddSync(fileWriter), isDev)
}

func newTeeCore(level zapcore.Level, console, file zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileEncoder := zapcore.NewJSONEncoder(NewEncoderConfig())
	fileCore := zapcore.NewCore(fileEncoder, file, level)

	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, console, level)

	return zapcore.NewTee(consoleCore, fileCore)
}
