// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts the configuration built by New.
type Option func(*zap.Config)

// FileOnly drops the stderr sink so log lines do not interleave with command output.
func FileOnly() Option {
	return func(c *zap.Config) {
		c.OutputPaths = c.OutputPaths[1:]
		c.ErrorOutputPaths = c.OutputPaths
	}
}

// New returns a production JSON logger writing to stderr and, when path is
// non-empty, appending to path as well. level is a zap level name ("info", "debug", ...).
func New(path, level string, opts ...Option) (*zap.Logger, error) {
	lvl := zap.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg.Build()
}
