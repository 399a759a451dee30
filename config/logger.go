package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lesiw.io/hostfs"
)

// NewLogger builds a logger from c. The returned level can be changed
// while the logger is in use. An unknown level means info.
func NewLogger(c LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if c.Format == "console" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	atom := zap.NewAtomicLevelAt(level)
	config.Level = atom
	if c.Output != "" {
		config.OutputPaths = []string{c.Output}
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, atom, err
	}
	return logger, atom, nil
}

// InstallLogger builds a logger from c and makes it the process-wide
// logger of hostfs and its backends.
func InstallLogger(c LogConfig) (zap.AtomicLevel, error) {
	logger, level, err := NewLogger(c)
	if err != nil {
		return level, err
	}
	hostfs.SetLogger(logger)
	return level, nil
}
