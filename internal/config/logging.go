// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coregx/searchq/internal/audit"
	"github.com/coregx/searchq/internal/logger"
)

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", level)
	}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// NewLogger creates the logger described by the logging section, writing to w.
func (c LoggingConfig) NewLogger(w io.Writer) (logger.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	switch c.Backend {
	case "", "slog":
		opts := &slog.HandlerOptions{Level: level}
		if c.Format == "json" {
			return logger.NewSlogAdapter(slog.New(slog.NewJSONHandler(w, opts))), nil
		}
		return logger.NewSlogAdapter(slog.New(slog.NewTextHandler(w, opts))), nil
	case "zap":
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if c.Format == "json" {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		zc := zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel(level))
		return logger.NewZapAdapter(zap.New(zc)), nil
	default:
		return nil, fmt.Errorf("unknown logging backend %q", c.Backend)
	}
}

// NewAuditor returns the auditor described by the audit level, logging to log.
func (c LoggingConfig) NewAuditor(log logger.Logger) (*audit.Auditor, error) {
	level, err := audit.ParseLevel(c.Audit)
	if err != nil {
		return nil, err
	}
	return audit.NewAuditor(log, c.NewSanitizer(), level), nil
}

// NewSanitizer returns the sanitizer for logged context and expressions.
// A non-empty SensitiveKeys replaces the default key list.
func (c LoggingConfig) NewSanitizer() *logger.Sanitizer {
	return logger.NewSanitizer(c.SensitiveKeys)
}
