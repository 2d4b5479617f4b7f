// Package logger wraps zap with the request-scoped child-logger pattern used
// throughout the handler and middleware layers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moneyquest/backend/pkg/security"
)

// Logger wraps a zap.SugaredLogger so call sites can pass variadic
// key-value pairs without building zap.Field values by hand.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger for the given level ("debug","info","warn","error")
// and environment ("development" uses a console encoder, anything else
// uses JSON).
func New(level, environment string) *Logger {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if environment == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}

	return &Logger{sugar: zl.Sugar()}
}

// ForRequest returns a child logger carrying request correlation fields.
func (l *Logger) ForRequest(requestID, method, path string) *Logger {
	return &Logger{sugar: l.sugar.With("request_id", requestID, "method", method, "path", path)}
}

// With returns a child logger carrying the given key-value pairs.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, maskKV(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, maskKV(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, maskKV(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, maskKV(kv)...) }

// Infow/Errorw are aliases kept for call sites that prefer the zap-sugared
// naming convention (e.g. HTTP access logging).
func (l *Logger) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, maskKV(kv)...) }
func (l *Logger) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, maskKV(kv)...) }

// maskKV redacts string values in a key-value pair list before they reach
// zap, so a stray email, phone number, or bearer token in a log call
// doesn't end up in plaintext log output.
func maskKV(kv []interface{}) []interface{} {
	out := make([]interface{}, len(kv))
	for i, v := range kv {
		if s, ok := v.(string); ok && i%2 == 1 {
			out[i] = security.MaskString(s)
			continue
		}
		out[i] = v
	}
	return out
}

// Sync flushes any buffered log entries. Call before process exit.
func (l *Logger) Sync() error { return l.sugar.Sync() }
