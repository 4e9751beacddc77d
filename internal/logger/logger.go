// Package logger builds the zap logger shared by the fxwave binaries.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the level and encoding of log output.
type Options struct {
	Level    string
	Encoding string
}

// New builds a logger writing to stdout, with errors from zap itself on stderr.
func New(options Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel

	if err := level.Set(strings.ToLower(options.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := options.Encoding

	if encoding != "console" {
		encoding = "json"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if encoding == "console" {
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}
