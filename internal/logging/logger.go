package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger = zap.NewNop()
)

// InitLogger initializes the global logger for the given service name
func InitLogger(service string) error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(logLevel)); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := config.Build(
		zap.Fields(
			zap.String("service", service),
			zap.String("version", "v1"),
		),
	)
	if err != nil {
		return err
	}

	Logger = logger
	zap.ReplaceGlobals(logger)
	return nil
}

// Named returns a child of the global logger
func Named(name string) *zap.Logger {
	return Logger.Named(name)
}
