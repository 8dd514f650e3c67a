package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap logger tagged with the service name.
// Debug lowers the level to debug and turns sampling off so every
// per-prediction line from an ingestion is kept.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]interface{}{"service": "f1picks"}
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
		cfg.Sampling = nil
	}
	return cfg.Build()
}

// Field helpers so every package logs ids under the same keys.

func Race(id int64) zap.Field       { return zap.Int64("race_id", id) }
func User(id int64) zap.Field       { return zap.Int64("user_id", id) }
func Prediction(id int64) zap.Field { return zap.Int64("prediction_id", id) }
