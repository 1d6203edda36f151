package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 通用日志构建器：zap + lumberjack 滚动切割
// 库内各组件只接收 *zap.Logger，由使用方决定是否走这里的滚动配置

// Config 日志配置
type Config struct {
	// Filename 日志文件路径；为空时只输出到stderr
	Filename string
	// MaxSizeMB 单个日志文件的最大体积（MB），超过后切割
	MaxSizeMB int
	// MaxBackups 保留的历史文件个数
	MaxBackups int
	// MaxAgeDays 历史文件的最长保留天数
	MaxAgeDays int
	// Level 最低输出级别：debug/info/warn/error，缺省info
	Level string
	// Console 是否同时输出到stderr
	Console bool
}

// New 按配置构建日志器
func New(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if cfg.Filename != "" {
		sink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level))
	}
	if cfg.Console || cfg.Filename == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// NewNop 无操作日志器（测试和默认场景）
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
