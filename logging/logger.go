// Package logging defines the structured logger interface shared by every
// worker-core package, and a zap-backed default implementation.
package logging

import (
	"go.uber.org/zap"
)

// Logger is the structured logging contract implemented by every
// component in this repository. Methods take a message followed by
// alternating key/value pairs, mirroring zap's SugaredLogger calling
// convention.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap builds a production zap logger wrapped behind the Logger interface.
func NewZap() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

// NewZapWithLevel builds a zap logger at the given level name
// ("debug", "info", "warn", "error"), matching the service host's
// --log-level flag.
func NewZapWithLevel(level string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: z.Sugar()}, nil
}

func (l *zapLogger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }
func (l *zapLogger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, kv...) }
func (l *zapLogger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, kv...) }
func (l *zapLogger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

type noopLogger struct{}

// Noop returns a Logger that discards everything, for tests.
func Noop() Logger { return noopLogger{} }

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

var _ Logger = (*zapLogger)(nil)
var _ Logger = noopLogger{}
