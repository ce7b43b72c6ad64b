package statemachine

import "github.com/junbin-yang/go-statemachine/pkg/logger"

// Option 声明守卫时的选项
type Option func(*options)

type options struct {
	registry  *Registry
	log       logger.Logger
	observers []Observer
}

func newOptions(opts []Option) *options {
	o := &options{log: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRegistry 将转换描述写入注册表
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger 设置守卫使用的日志，未设置时不输出
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithObserver 添加转换结果观察者
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}
