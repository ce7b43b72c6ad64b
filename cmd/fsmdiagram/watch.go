package main

import (
	"context"
	"fmt"
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/config"
	"github.com/junbin-yang/go-statemachine/pkg/definition"
	"github.com/junbin-yang/go-statemachine/pkg/logger"
	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// watchDefinition 渲染定义文件，并在文件变化后重新渲染，直到 ctx 结束
// 非法的新内容只记录日志，保留上一次的输出
func watchDefinition(ctx context.Context, a *app, path string, debounce time.Duration,
	render func(*statemachine.Registry) error) error {
	if _, ok := config.SerializerFor(path, definition.Formats()...); !ok {
		return fmt.Errorf("%w: %s", definition.ErrUnsupportedFormat, path)
	}

	cm := config.NewConfigManager(&definition.Definition{},
		config.WithConfigFormats(definition.Formats()...),
		config.WithConfigWatch(true, debounce),
		config.WithLogger(a.log),
	)
	defer cm.Close()

	cm.OnChange(func(_, def *definition.Definition) {
		reg, err := def.Registry()
		if err != nil {
			a.log.Warn("definition reload rejected", logger.String("file", path), logger.Err(err))
			return
		}
		if err := render(reg); err != nil {
			a.log.Error("render failed", logger.String("file", path), logger.Err(err))
		}
	})

	// 监听在加载时启动，首次输出之后的修改都不会遗漏
	if err := cm.LoadConfig(path); err != nil {
		return fmt.Errorf("load definition: %w", err)
	}
	def, err := cm.GetConfig()
	if err != nil {
		return err
	}
	reg, err := def.Registry()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := render(reg); err != nil {
		return err
	}

	a.log.Info("watching definition", logger.String("file", path))
	<-ctx.Done()
	return nil
}
