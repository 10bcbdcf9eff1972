package logger

import (
	"fmt"

	"github.com/Shugur-Network/loginit/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func buildEncoder(format string, color bool) (zapcore.Encoder, error) {
	switch format {
	case "json":
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = levelEncoder(zapcore.LowercaseLevelEncoder, "trace")
		return zapcore.NewJSONEncoder(cfg), nil
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		if color {
			cfg.EncodeLevel = levelEncoder(zapcore.CapitalColorLevelEncoder, "\x1b[35mTRACE\x1b[0m")
		} else {
			cfg.EncodeLevel = levelEncoder(zapcore.CapitalLevelEncoder, "TRACE")
		}
		return zapcore.NewConsoleEncoder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// levelEncoder names the trace level, which zap would otherwise print as "Level(-2)".
func levelEncoder(base zapcore.LevelEncoder, trace string) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		if l == config.TraceLevel {
			enc.AppendString(trace)
			return
		}
		base(l, enc)
	}
}
