package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger
type Logger struct {
	*zap.Logger
}

var (
	global *Logger
	once   sync.Once
)

// Init initializes the global logger. In development mode logs are
// human-readable; in production they are JSON.
func Init(environment string) (*Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return nil, err
	}

	global = &Logger{l}
	return global, nil
}

// Get returns the global logger, initializing a development logger if
// Init was never called.
func Get() *Logger {
	once.Do(func() {
		if global == nil {
			l, _ := zap.NewDevelopment()
			global = &Logger{l}
		}
	})
	return global
}

// Named returns a named child logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

// Sync flushes buffered log entries
func (l *Logger) Sync() {
	_ = l.Logger.Sync()
}
