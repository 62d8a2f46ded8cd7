// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogStyle selects the zap encoder used by NewLogger.
type LogStyle string

const (
	LogStyleTerminal LogStyle = "terminal"
	LogStyleJSON     LogStyle = "json"
	LogStyleLogfmt   LogStyle = "logfmt"
	LogStyleNoop     LogStyle = "noop"
)

// NewLogger builds a zap.Logger for the given style and level string (any
// value zapcore.ParseLevel accepts, e.g. "debug", "info", "warn", "error").
// An empty style defaults to terminal; an empty or unparseable level
// defaults to info.
func NewLogger(style LogStyle, level string) (*zap.Logger, error) {
	if style == "" {
		style = LogStyleTerminal
	}
	logLevel := zapcore.InfoLevel
	if level != "" {
		if lvl, err := zapcore.ParseLevel(level); err == nil {
			logLevel = lvl
		}
	}

	switch style {
	case LogStyleNoop:
		return zap.NewNop(), nil
	case LogStyleJSON:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err := cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
		if err != nil {
			return nil, errors.Wrap(err, "failed to build json logger")
		}
		return logger, nil
	case LogStyleTerminal:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		logger, err := cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
		if err != nil {
			return nil, errors.Wrap(err, "failed to build terminal logger")
		}
		return logger, nil
	case LogStyleLogfmt:
		encCfg := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "lvl",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		}
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			logLevel,
		)
		return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
	default:
		return nil, errors.Errorf("invalid log style %q: must be one of terminal, json, logfmt, noop", style)
	}
}
