// Package logger wraps zap with console/JSON encoding and helpers that
// thread request-scoped fields (request id, tenant, user, trace ids)
// through context.Context.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls construction of the process logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is console or json.
	Format string
	// Output is stdout, stderr, or a file path.
	Output string
	// TimeFormat overrides the ISO8601 default when set.
	TimeFormat string
}

// New builds a zap logger from cfg. Level and format fall back to
// info/console when unset so a zero Config is usable in tests.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := buildEncoder(cfg)
	if err != nil {
		return nil, err
	}

	sink, err := buildSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// NewForEnvironment returns a logger with conventional settings per
// environment: production logs JSON at info, everything else logs
// colored console at debug.
func NewForEnvironment(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return New(Config{Level: "info", Format: "json", Output: "stdout"})
	}
	return New(Config{Level: "debug", Format: "console", Output: "stdout"})
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func buildEncoder(cfg Config) (zapcore.Encoder, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.TimeFormat != "" {
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	}
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	switch strings.ToLower(cfg.Format) {
	case "json":
		return zapcore.NewJSONEncoder(encCfg), nil
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func buildSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", output, err)
		}
		return zapcore.AddSync(file), nil
	}
}
