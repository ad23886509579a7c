package utils

import (
	"go.uber.org/zap"
)

var Log = zap.NewNop()

// InitLogger builds the process logger. Production gets JSON output,
// everything else the console encoder.
func InitLogger(production bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		logger = zap.NewExample()
		logger.Warn("falling back to example logger", zap.Error(err))
	}
	Log = logger
	return logger
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
