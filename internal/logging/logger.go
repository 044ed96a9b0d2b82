// Package logging builds the zap logger shared by the server, the CLI and
// the apiary monitor.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the given level and format.
//
// Supported formats are "json" (default) and "console". Unknown levels fall
// back to info.
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(format) {
	case "console", "text":
		cfg = zap.NewDevelopmentConfig()
	case "", "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.Fields(zap.String("service", "hive-thermal")))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// parseLevel converts a string log level to a zap level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
