package logger

import (
	"strings"

	"github.com/procurement/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

// FromAppConfig builds the logger configuration from the [log] section.
// Production always logs JSON.
func FromAppConfig(cfg config.LogConfig, env string) *Config {
	out := &Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Output:     cfg.Output,
		TimeFormat: defaultTimeFormat,
	}
	if env == "production" {
		out.Format = "json"
	}
	return out
}

// New builds the process logger. Errors carry a stack trace.
func New(cfg *Config) (*zap.Logger, error) {
	return zapConfig(cfg).Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

func zapConfig(cfg *Config) zap.Config {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeFormat
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	enc.EncodeDuration = zapcore.MillisDurationEncoder

	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	return zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// parseLevel falls back to info for unknown names
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
