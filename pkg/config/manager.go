package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// ErrConfigNotFound 默认路径下没有可用的配置文件
var ErrConfigNotFound = errors.New("no valid config file found (tried default paths and formats)")

// ConfigManager 通用配置管理器
type ConfigManager[T any] struct {
	settings

	instance   *T           // 配置实例
	configPath string       // 配置文件路径
	once       sync.Once    // 确保配置只加载一次
	mu         sync.RWMutex // 读写锁
	loadErr    error        // 加载错误

	// 配置监听相关
	watcher   *fsnotify.Watcher // 文件监听器
	watchQuit chan struct{}     // 监听退出信号
	watchOnce sync.Once         // 确保监听只启动一次
	closeOnce sync.Once

	// 配置变更回调
	callbacks []func(old, new *T)
}

// NewConfigManager 创建配置管理器实例
// cfg: 配置结构体指针，字段值作为默认值
func NewConfigManager[T any](cfg *T, options ...Option) *ConfigManager[T] {
	if cfg == nil {
		panic("config instance cannot be nil")
	}

	cm := &ConfigManager[T]{
		settings:  defaultSettings(),
		instance:  cfg,
		watchQuit: make(chan struct{}),
	}

	// 应用自定义选项
	for _, opt := range options {
		opt(&cm.settings)
	}

	return cm
}

// LoadConfig 加载配置文件
// customPath: 自定义配置路径，空字符串使用默认路径
func (cm *ConfigManager[T]) LoadConfig(customPath string) error {
	cm.once.Do(func() {
		cm.mu.Lock()
		defer cm.mu.Unlock()

		var err error

		// 1. 处理自定义路径
		if customPath != "" {
			if err = validateConfigPath(customPath); err != nil {
				cm.loadErr = fmt.Errorf("invalid custom config path: %w", err)
				return
			}
			cm.configPath = customPath
			cm.chooseSerializer(customPath)
		} else {
			// 2. 查找默认路径
			if cm.configPath, err = cm.findDefaultConfigPath(); err != nil {
				cm.loadErr = fmt.Errorf("default config not found: %w", err)
				return
			}
		}

		// 3. 解析配置文件
		if err = cm.parseConfigFile(cm.instance); err != nil {
			cm.loadErr = fmt.Errorf("parse config failed: %w", err)
			return
		}

		// 4. 应用环境变量覆盖
		if err = applyEnvOverrides(cm.instance); err != nil {
			cm.loadErr = fmt.Errorf("apply env overrides failed: %w", err)
			return
		}

		// 5. 启动配置监听（如果启用）
		if cm.enableWatch {
			if err = cm.startWatch(); err != nil {
				cm.log.Warn("config watch disabled", logger.Err(err))
			}
		}
	})

	return cm.loadErr
}

// GetConfig 获取配置实例
func (cm *ConfigManager[T]) GetConfig() (*T, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	return cm.instance, nil
}

// ConfigPath 返回实际加载的配置文件路径
func (cm *ConfigManager[T]) ConfigPath() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// SaveConfig 保存配置到文件
func (cm *ConfigManager[T]) SaveConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.configPath == "" {
		return errors.New("config not initialized")
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件（避免文件损坏）
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}

	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}

	return nil
}

// ReloadConfig 手动重新加载配置
func (cm *ConfigManager[T]) ReloadConfig() error {
	cm.mu.RLock()
	currentPath := cm.configPath
	cm.mu.RUnlock()

	if currentPath == "" {
		return errors.New("config path not initialized")
	}
	if err := validateConfigPath(currentPath); err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	// 创建新实例避免覆盖原数据
	newInstance := new(T)

	cm.mu.Lock()
	if err := cm.parseConfigFile(newInstance); err != nil {
		cm.mu.Unlock()
		return err
	}
	if err := applyEnvOverrides(newInstance); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	oldInstance := cm.instance
	cm.instance = newInstance
	cm.loadErr = nil

	// 复制回调列表（避免死锁）
	callbacks := make([]func(old, new *T), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 触发配置变更回调（在锁外执行）
	for _, callback := range callbacks {
		callback(oldInstance, newInstance)
	}

	return nil
}

// EnableWatch 动态启用/禁用配置监听
func (cm *ConfigManager[T]) EnableWatch(enable bool) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.enableWatch = enable
	if enable && cm.configPath != "" {
		return cm.startWatch()
	}
	cm.stopWatch()
	return nil
}

// Close 关闭配置管理器（停止监听）
func (cm *ConfigManager[T]) Close() {
	cm.closeOnce.Do(func() {
		cm.mu.Lock()
		cm.stopWatch()
		cm.mu.Unlock()
		close(cm.watchQuit)
	})
}

// OnChange 注册配置变更回调
func (cm *ConfigManager[T]) OnChange(callback func(old, new *T)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

/* ------------------------------ 内部方法 ------------------------------ */

// chooseSerializer 选择序列化器（强制格式 > 后缀识别 > 默认）
func (cm *ConfigManager[T]) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}
	if s, ok := SerializerFor(path, cm.supportedFormats...); ok {
		cm.serializer = s
	}
}

// findDefaultConfigPath 查找默认配置路径
func (cm *ConfigManager[T]) findDefaultConfigPath() (string, error) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	for _, pathTpl := range cm.defaultPaths {
		basePath := replacePathVars(pathTpl, map[string]string{
			"AppName": cm.appName,
			"ExecDir": execDir,
		})

		// 先尝试无后缀文件
		if err := validateConfigPath(basePath); err == nil {
			cm.chooseSerializer(basePath)
			return basePath, nil
		}

		// 尝试带后缀的文件
		for _, format := range cm.supportedFormats {
			fullPath := basePath + format.GetFileExt()
			if err := validateConfigPath(fullPath); err == nil {
				cm.serializer = format
				if cm.forceFormat != nil {
					cm.serializer = cm.forceFormat
				}
				return fullPath, nil
			}
		}
	}

	return "", ErrConfigNotFound
}

// startWatch 启动配置文件监听，调用方持有写锁
func (cm *ConfigManager[T]) startWatch() error {
	var err error
	cm.watchOnce.Do(func() {
		var w *fsnotify.Watcher
		if w, err = fsnotify.NewWatcher(); err != nil {
			err = fmt.Errorf("create watcher failed: %w", err)
			return
		}

		if err = w.Add(cm.configPath); err != nil {
			_ = w.Close()
			err = fmt.Errorf("add watch path failed: %w", err)
			return
		}

		cm.watcher = w
		go cm.watchLoop(w)
	})
	return err
}

// stopWatch 停止配置文件监听，调用方持有写锁
func (cm *ConfigManager[T]) stopWatch() {
	cm.watchOnce = sync.Once{}
	if cm.watcher != nil {
		_ = cm.watcher.Close()
		cm.watcher = nil
	}
}

// watchLoop 监听文件变化循环
func (cm *ConfigManager[T]) watchLoop(w *fsnotify.Watcher) {
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			// 处理文件修改/创建/重命名事件
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounceTimer.Reset(cm.watchDebounceInterval)
			}

		case <-debounceTimer.C:
			// 自动重载配置
			if err := cm.ReloadConfig(); err != nil {
				cm.log.Warn("config auto reload failed", logger.Err(err))
			} else {
				cm.log.Info("config auto reloaded", logger.String("path", cm.ConfigPath()))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cm.log.Warn("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}

// parseConfigFile 解析配置文件到 dst
func (cm *ConfigManager[T]) parseConfigFile(dst *T) error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return fmt.Errorf("read file failed: %w", err)
	}

	if err := cm.serializer.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
	}

	return nil
}
