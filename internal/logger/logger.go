package logger

import (
	"os"
	"strings"

	"github.com/samvad-hq/bookmark-client/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Logger is the structured logging surface shared by runtimes and services.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// ZapLogger implements Logger on top of a zap logger.
type ZapLogger struct {
	z *zap.Logger
}

func (l *ZapLogger) InfoObj(msg, key string, obj interface{})  { l.z.Info(msg, zap.Any(key, obj)) }
func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) { l.z.Debug(msg, zap.Any(key, obj)) }
func (l *ZapLogger) WarnObj(msg, key string, obj interface{})  { l.z.Warn(msg, zap.Any(key, obj)) }
func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) { l.z.Error(msg, zap.Any(key, obj)) }

// Sugar exposes the underlying sugared logger.
func (l *ZapLogger) Sugar() *zap.SugaredLogger { return l.z.Sugar() }

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes a zap logger writing JSON to stdout using settings from config.
func Init(cfg *config.Config) (*ZapLogger, error) {
	return InitTo(cfg, zapcore.Lock(os.Stdout))
}

// InitTo is Init writing to sink. CLIs pass stderr so stdout stays clean.
func InitTo(cfg *config.Config, sink zapcore.WriteSyncer) (*ZapLogger, error) {
	level := zapcore.InfoLevel
	if cfg != nil {
		level = ParseLevel(cfg.LogLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		sink,
		level,
	)

	z := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if cfg != nil && cfg.AppName != "" {
		z = z.With(zap.String("app", cfg.AppName))
	}
	S = z.Sugar()
	return &ZapLogger{z: z}, nil
}

// New wraps an existing zap logger, mainly for tests using zaptest/observer.
func New(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key` on the
// package-level logger and are no-ops before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
