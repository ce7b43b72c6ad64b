package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/config"
	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// Config fsmdiagram 配置
type Config struct {
	Logger  LoggerConfig  `yaml:"logger" json:"logger" ini:"logger"`
	Diagram DiagramConfig `yaml:"diagram" json:"diagram" ini:"diagram"`
}

// LoggerConfig 日志配置，output 为 stderr、stdout 或文件路径
type LoggerConfig struct {
	Level        string        `yaml:"level" json:"level" ini:"level" env:"FSMDIAGRAM_LOG_LEVEL"`
	Output       string        `yaml:"output" json:"output" ini:"output"`
	MaxSize      int           `yaml:"max_size" json:"max_size" ini:"max_size"`
	MaxBackups   int           `yaml:"max_backups" json:"max_backups" ini:"max_backups"`
	MaxAge       int           `yaml:"max_age" json:"max_age" ini:"max_age"`
	Compress     bool          `yaml:"compress" json:"compress" ini:"compress"`
	RotateByTime bool          `yaml:"rotate_by_time" json:"rotate_by_time" ini:"rotate_by_time"`
	RotationTime time.Duration `yaml:"rotation_time" json:"rotation_time" ini:"rotation_time"`
}

// DiagramConfig 渲染配置
type DiagramConfig struct {
	Initial bool `yaml:"initial" json:"initial" ini:"initial" env:"FSMDIAGRAM_INITIAL"`
	Fence   bool `yaml:"fence" json:"fence" ini:"fence"`
}

func defaultConfig() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:      "warn",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 10,
			MaxAge:     30,
		},
		Diagram: DiagramConfig{Initial: true},
	}
}

// loadConfig 加载配置，未指定路径且默认路径下没有配置文件时使用默认值
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	cm := config.NewConfigManager(cfg,
		config.WithAppName("fsmdiagram"),
		config.WithDefaultPaths("./{{.AppName}}", "{{.ExecDir}}/{{.AppName}}"),
	)

	if err := cm.LoadConfig(path); err != nil {
		if path == "" && errors.Is(err, config.ErrConfigNotFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cm.GetConfig()
}

// newLogger 按配置创建日志，文件输出时按大小或时间轮转
func newLogger(c *LoggerConfig, stderr io.Writer) (logger.Logger, error) {
	level, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer
	switch c.Output {
	case "", "stderr":
		out = stderr
	case "stdout":
		return nil, errors.New("logger output stdout would mix with diagram output")
	default:
		rc := &logger.RotateConfig{
			Filename:     c.Output,
			MaxSize:      c.MaxSize,
			MaxBackups:   c.MaxBackups,
			MaxAge:       c.MaxAge,
			Compress:     c.Compress,
			RotationTime: c.RotationTime,
			LocalTime:    true,
		}
		if c.RotateByTime {
			out = logger.NewRotateByTime(rc)
		} else {
			out = logger.NewRotateBySize(rc)
		}
	}

	return logger.New(out, level, logger.AddCaller()), nil
}
