package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局 SugaredLogger；未初始化时为 no-op，测试无需额外准备
var Log = zap.NewNop().Sugar()

// Options 日志输出配置
type Options struct {
	File  string // 日志文件路径，如 "server.log"
	Level string // debug / info / warn / error
}

// InitLogger 初始化 zap 日志到本地文件（lumberjack 滚动）
func InitLogger(opts Options) error {
	level := zapcore.DebugLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
	}

	// 10MB 每文件，保留3个备份，最长7天
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	ws := zapcore.AddSync(lj)
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), ws, level)

	Log = zap.New(core, zap.AddCaller()).Sugar()
	return nil
}

// Named 返回带子模块名的 logger，例如 "server.room-1"
func Named(name string) *zap.SugaredLogger {
	return Log.Named(name)
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
