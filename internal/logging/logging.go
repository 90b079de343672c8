// Package logging configures the global zap logger used through zap.S().
package logging

import (
	ierrors "github.com/cnosuke/pagemeta/internal/errors"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a logger writing to path ("stderr", "stdout" or a file)
// with the given level and format ("console" or "json").
func NewLogger(level, format, path string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, ierrors.Wrapf(err, "invalid log level %q", level)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, errors.Newf("unknown log format %q", format)
	}

	if path == "" {
		path = "stderr"
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to build logger")
	}
	return logger, nil
}

// Init replaces the global zap logger. The returned function flushes the
// logger and restores the previous globals.
func Init(level, format, path string) (func(), error) {
	logger, err := NewLogger(level, format, path)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
