package logging

import (
	"os"

	"go.uber.org/zap"
)

var logger *zap.Logger

func init() {
	if os.Getenv("ENV") == "development" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
}

// L returns the process-wide logger.
func L() *zap.Logger {
	return logger
}

// With returns a child logger carrying the supplied fields.
func With(fields ...zap.Field) *zap.Logger {
	return logger.With(fields...)
}

// Sync flushes buffered entries; called once on shutdown.
func Sync() {
	_ = logger.Sync()
}
