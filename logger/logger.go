// Package logger - zap logger construction.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger writing debug (when debug is set) and info
// entries to stdout, and warnings and above to stderr.
func New(debug bool) *zap.Logger {
	return zap.New(NewCore(debug, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr)))
}

// NewCore builds the tee core behind New with explicit sinks.
func NewCore(debug bool, stdout, stderr zapcore.WriteSyncer) zapcore.Core {
	// debug and info level enabler
	lowLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if debug {
			return level == zapcore.DebugLevel || level == zapcore.InfoLevel
		}
		return level == zapcore.InfoLevel
	})

	// warn, error and fatal level enabler
	highLevel := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		return level >= zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), stdout, lowLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), stderr, highLevel),
	)
}
