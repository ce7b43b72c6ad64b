package logger

import (
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename string // 日志文件路径

	// 按大小轮转
	MaxSize    int  // 单个文件最大尺寸（MB）
	MaxBackups int  // 保留的旧文件数量
	Compress   bool // 是否压缩旧文件

	// 按时间轮转
	RotationTime time.Duration // 轮转周期
	MaxAge       int           // 保留天数

	LocalTime bool // 文件名使用本地时间
}

// NewRotateBySize 按大小轮转的输出
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
}

// NewProductionRotateBySize 使用默认参数按大小轮转
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	})
}

// NewRotateByTime 按时间轮转的输出
// 创建失败时退回到按大小轮转
func NewRotateByTime(cfg *RotateConfig) io.Writer {
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := time.Duration(cfg.MaxAge) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	var clock rotatelogs.Clock = rotatelogs.UTC
	if cfg.LocalTime {
		clock = rotatelogs.Local
	}

	w, err := rotatelogs.New(
		cfg.Filename+".%Y%m%d%H",
		rotatelogs.WithLinkName(cfg.Filename),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithClock(clock),
	)
	if err != nil {
		return NewRotateBySize(cfg)
	}
	return w
}
