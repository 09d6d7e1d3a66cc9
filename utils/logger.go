package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 全局日志，未初始化时为 no-op，便于测试直接调用服务
var Logger = zap.NewNop()

// NewLogger release 模式输出 JSON，其余模式为彩色控制台；level 为空时使用模式默认级别
func NewLogger(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("imageprocessor"), nil
}

func InitLogger(mode, level string) error {
	logger, err := NewLogger(mode, level)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

func Sync() {
	_ = Logger.Sync()
}
