package configslog

import (
	"errors"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the structured logger, SLog its sugared twin. Both discard output
// until InitLogger runs.
var (
	Log  = zap.NewNop()
	SLog = Log.Sugar()
)

// InitLogger builds the process logger. Development mode logs in color at
// debug level; otherwise entries are JSON. level overrides the default level
// when set.
func InitLogger(appEnv, level string) {
	var cfg zap.Config
	if strings.EqualFold(appEnv, "development") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		logger = zap.NewExample()
		logger.Error("Logger config could not be built", zap.Error(err))
	}
	SetLogger(logger)
}

// SetLogger replaces the process logger.
func SetLogger(logger *zap.Logger) {
	Log = logger
	SLog = logger.Sugar()
}

// SyncLogger flushes buffered entries. Errors from syncing a terminal are
// ignored.
func SyncLogger() error {
	err := Log.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
