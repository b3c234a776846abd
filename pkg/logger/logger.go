package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/killallgit/cortex-chat/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides a unified logging interface over zap
type Logger struct {
	sugar  *zap.SugaredLogger
	closer io.Closer
}

var (
	mu            sync.RWMutex
	defaultLogger = &Logger{sugar: zap.NewNop().Sugar()}
)

// Init initializes the default logger from the logging section of the config.
// Calling Init again replaces the previous logger and closes its file.
func Init(cfg config.LoggingConfig) error {
	l, err := New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mu.Lock()
	previous := defaultLogger
	defaultLogger = l
	mu.Unlock()

	return previous.Close()
}

// New creates a Logger writing to a rotating log file
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = config.BuildSettingsPath("system.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// lumberjack only appends, so a non-preserved log is cleared up front
	if !cfg.Preserve {
		if err := os.WriteFile(logPath, nil, 0644); err != nil {
			return nil, fmt.Errorf("failed to truncate log file: %w", err)
		}
	}

	file := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}

	return newWithSyncer(cfg.Format, level, zapcore.AddSync(file), file), nil
}

// NewWithWriter creates a Logger writing to w (useful for testing)
func NewWithWriter(w io.Writer, level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return newWithSyncer("console", lvl, zapcore.AddSync(w), nil), nil
}

func newWithSyncer(format string, level zapcore.Level, out zapcore.WriteSyncer, closer io.Closer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, out, level)

	// Errors are mirrored to stderr so they are not lost in the log file
	if closer != nil {
		stderrEncoderConfig := encoderConfig
		stderrEncoderConfig.TimeKey = zapcore.OmitKey
		stderr := zapcore.NewCore(
			zapcore.NewConsoleEncoder(stderrEncoderConfig),
			zapcore.Lock(os.Stderr),
			zapcore.ErrorLevel,
		)
		core = zapcore.NewTee(core, stderr)
	}

	return &Logger{
		sugar:  zap.New(core).Sugar(),
		closer: closer,
	}
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Debug logs a debug message with alternating key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs an info message
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs an error message
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// WithComponent returns a child logger tagged with the component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{sugar: l.sugar.Named(component)}
}

// With returns a child logger carrying the given key/value pairs on every entry
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Package-level convenience functions using the default logger

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the default logger (useful for testing)
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// WithComponent returns a component logger derived from the default logger
func WithComponent(component string) *Logger {
	return current().WithComponent(component)
}

// Debug logs a debug message using the default logger
func Debug(msg string, keysAndValues ...any) {
	current().Debug(msg, keysAndValues...)
}

// Info logs an info message using the default logger
func Info(msg string, keysAndValues ...any) {
	current().Info(msg, keysAndValues...)
}

// Warn logs a warning message using the default logger
func Warn(msg string, keysAndValues ...any) {
	current().Warn(msg, keysAndValues...)
}

// Error logs an error message using the default logger
func Error(msg string, keysAndValues ...any) {
	current().Error(msg, keysAndValues...)
}

// Close closes the default logger
func Close() error {
	return current().Close()
}
