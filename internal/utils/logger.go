// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is a thin field-map facade over zap.
type Logger struct {
	mu      sync.RWMutex
	zl      *zap.Logger
	level   zap.AtomicLevel
	enabled bool
}

var (
	globalLogger *Logger
	loggerOnce   sync.Once
)

// GetLogger returns the global logger instance. Until InitLogger runs it writes to stdout.
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
		globalLogger = &Logger{
			zl:      newZap(level, []string{"stdout"}),
			level:   level,
			enabled: true,
		}
	})
	return globalLogger
}

// NewLogger wraps an existing zap logger, mostly for tests (zap.NewNop()).
func NewLogger(zl *zap.Logger) *Logger {
	return &Logger{
		zl:      zl,
		level:   zap.NewAtomicLevelAt(zapcore.DebugLevel),
		enabled: true,
	}
}

func newZap(level zap.AtomicLevel, outputs []string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.OutputPaths = outputs
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// InitLogger points the global logger at stdout plus logFile. An empty logFile keeps stdout only.
func InitLogger(logFile string, debug bool) error {
	logger := GetLogger()

	outputs := []string{"stdout"}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		outputs = append(outputs, logFile)
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if debug {
		logger.level.SetLevel(zapcore.DebugLevel)
	}
	_ = logger.zl.Sync()
	logger.zl = newZap(logger.level, outputs)
	return nil
}

// SetLogLevel sets the minimum level for logging
func (l *Logger) SetLogLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Enable enables or disables logging
func (l *Logger) Enable(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// Zap exposes the underlying logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zl
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.Zap().Sync()
}

func (l *Logger) log(level LogLevel, message string, fields map[string]interface{}) {
	l.mu.RLock()
	zl, enabled := l.zl, l.enabled
	l.mu.RUnlock()
	if !enabled {
		return
	}

	zf := toZapFields(fields)
	switch level {
	case DEBUG:
		zl.Debug(message, zf...)
	case INFO:
		zl.Info(message, zf...)
	case WARNING:
		zl.Warn(message, zf...)
	case ERROR:
		zl.Error(message, zf...)
	case FATAL:
		zl.Fatal(message, zf...)
	}
}

// toZapFields sorts keys so output is stable across runs.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.log(DEBUG, message, fields)
}

// Info logs an info message
func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.log(INFO, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.log(WARNING, message, fields)
}

// Error logs an error message
func (l *Logger) Error(message string, fields map[string]interface{}) {
	l.log(ERROR, message, fields)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string, fields map[string]interface{}) {
	l.log(FATAL, message, fields)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARNING, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(FATAL, fmt.Sprintf(format, args...), nil)
}
