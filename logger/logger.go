package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is stamped on every log line.
const Service = "juniortour"

// New builds a JSON zap logger.
// Debug mode keeps JSON output but lowers the level to debug.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": Service}
	return cfg.Build()
}
