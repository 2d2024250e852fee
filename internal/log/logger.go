// Package log provides a global logger with configurable logging level. Messages are formatted
// printf-style and emitted through a zap core writing to stderr.

package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelNone    Level = iota // Disables logging.
	LevelError                // Logs anomalies that are not expected to occur during normal use.
	LevelWarning              // Logs anomalies that are expected to occur occasionally during normal use.
	LevelInfo                 // Logs major events.
	LevelDebug                // Logs detailed IO
)

var (
	logMutex       sync.Mutex
	globalLogLevel Level
	sink           zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	sugar          *zap.SugaredLogger
)

var zapLevels = map[Level]zapcore.Level{
	LevelDebug:   zapcore.DebugLevel,
	LevelInfo:    zapcore.InfoLevel,
	LevelWarning: zapcore.WarnLevel,
	LevelError:   zapcore.ErrorLevel,
}

func init() {
	rebuild()
}

// rebuild must be called with logMutex held or before any concurrent use.
func rebuild() {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	current := globalLogLevel
	enabled := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		if current == LevelNone {
			return false
		}
		return l >= zapLevels[current]
	})
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, enabled)
	sugar = zap.New(core).Sugar()
}

// SetLevel sets the most verbose level that will be emitted.
func SetLevel(level Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	globalLogLevel = level
	rebuild()
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w zapcore.WriteSyncer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	sink = w
	rebuild()
}

func logger() (*zap.SugaredLogger, Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	return sugar, globalLogLevel
}

func log(level Level, format string, a ...interface{}) {
	l, current := logger()
	if level > current {
		return
	}
	msg := fmt.Sprintf(format, a...)
	switch level {
	case LevelDebug:
		l.Debug(msg)
	case LevelInfo:
		l.Info(msg)
	case LevelWarning:
		l.Warn(msg)
	case LevelError:
		l.Error(msg)
	}
}

func Debug(format string, a ...interface{}) {
	log(LevelDebug, format, a...)
}
func Info(format string, a ...interface{}) {
	log(LevelInfo, format, a...)
}
func Warning(format string, a ...interface{}) {
	log(LevelWarning, format, a...)
}
func Error(format string, a ...interface{}) {
	log(LevelError, format, a...)
}
