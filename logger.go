package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop().Sugar()

// initLogger swaps the no-op logger for a real one. env "production" selects
// JSON output, anything else the console encoder.
func initLogger(env, level string) error {
	zapConfig := zap.NewDevelopmentConfig()
	if env == "production" {
		zapConfig = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return err
	}
	log = logger.Sugar()
	return nil
}

func syncLogger() {
	_ = log.Sync()
}
