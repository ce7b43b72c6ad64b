package config

import (
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// Option 配置管理器选项
type Option func(*settings)

// settings 与配置类型无关的管理器设置
type settings struct {
	appName               string       // 应用名称
	serializer            Serializer   // 当前使用的序列化器
	forceFormat           Serializer   // 强制指定的格式（优先级最高）
	supportedFormats      []Serializer // 支持的配置格式列表
	defaultPaths          []string     // 默认配置路径模板
	enableWatch           bool         // 是否启用配置监听
	watchDebounceInterval time.Duration
	log                   logger.Logger
}

func defaultSettings() settings {
	return settings{
		appName:          "app",
		serializer:       &YAMLSerializer{},
		supportedFormats: DefaultFormats(),
		defaultPaths: []string{
			"./{{.AppName}}",
			"{{.ExecDir}}/{{.AppName}}",
			"/etc/{{.AppName}}",
		},
		watchDebounceInterval: 500 * time.Millisecond,
		log:                   logger.Default(),
	}
}

// WithAppName 设置应用名称（用于默认配置文件名）
func WithAppName(name string) Option {
	return func(s *settings) {
		s.appName = name
	}
}

// WithSerializer 设置默认序列化器
func WithSerializer(ser Serializer) Option {
	return func(s *settings) {
		s.serializer = ser
	}
}

// WithForceFormat 强制指定配置格式（无视文件后缀）
func WithForceFormat(ser Serializer) Option {
	return func(s *settings) {
		s.forceFormat = ser
	}
}

// WithDefaultPaths 设置默认配置文件查找路径
func WithDefaultPaths(paths ...string) Option {
	return func(s *settings) {
		s.defaultPaths = paths
	}
}

// WithConfigFormats 设置支持的配置格式列表
func WithConfigFormats(formats ...Serializer) Option {
	return func(s *settings) {
		s.supportedFormats = formats
	}
}

// WithConfigWatch 启用配置文件监听（文件变化自动重载）
func WithConfigWatch(enable bool, interval time.Duration) Option {
	return func(s *settings) {
		s.enableWatch = enable
		s.watchDebounceInterval = interval
		if interval == 0 {
			s.watchDebounceInterval = 500 * time.Millisecond
		}
	}
}

// WithLogger 设置监听与重载日志
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
