package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

type TestConfig struct {
	Logger struct {
		Level  string `yaml:"level" json:"level" ini:"level" env:"TEST_LOG_LEVEL"`
		Output string `yaml:"output" json:"output" ini:"output"`
		Rotate bool   `yaml:"rotate" json:"rotate" ini:"rotate" env:"TEST_LOG_ROTATE"`
	} `yaml:"logger" json:"logger" ini:"logger"`
	Diagram struct {
		Initial bool          `yaml:"initial" json:"initial" ini:"initial" env:"TEST_DIAGRAM_INITIAL"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" ini:"timeout" env:"TEST_DIAGRAM_TIMEOUT"`
	} `yaml:"diagram" json:"diagram" ini:"diagram"`
}

const testYAML = `logger:
  level: info
  output: stderr
  rotate: false
diagram:
  initial: true
`

const testJSON = `{"logger": {"level": "debug", "output": "stdout"}, "diagram": {"initial": false}}`

const testINI = `[logger]
level = warn
output = fsm.log
rotate = true

[diagram]
initial = true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

// 场景1：基础使用（默认YAML格式）
func TestScenario1_BasicYAML(t *testing.T) {
	cm := NewConfigManager(&TestConfig{}, WithAppName("test"))
	if err := cm.LoadConfig(writeFile(t, "test.yml", testYAML)); err != nil {
		t.Fatalf("加载YAML配置失败: %v", err)
	}

	cfg, err := cm.GetConfig()
	if err != nil {
		t.Fatalf("获取配置失败: %v", err)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("期望日志级别 info, 实际 %s", cfg.Logger.Level)
	}
	if !cfg.Diagram.Initial {
		t.Error("期望 diagram.initial 为 true")
	}
}

// 场景2：.yaml 后缀与 .yml 等价
func TestScenario2_YAMLExtension(t *testing.T) {
	cm := NewConfigManager(&TestConfig{}, WithSerializer(&JSONSerializer{}))
	if err := cm.LoadConfig(writeFile(t, "test.yaml", testYAML)); err != nil {
		t.Fatalf("加载 .yaml 配置失败: %v", err)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Output != "stderr" {
		t.Errorf("期望输出 stderr, 实际 %s", cfg.Logger.Output)
	}
}

// 场景3：JSON格式
func TestScenario3_JSONFormat(t *testing.T) {
	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(writeFile(t, "test.json", testJSON)); err != nil {
		t.Fatalf("加载JSON配置失败: %v", err)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Level != "debug" {
		t.Errorf("期望日志级别 debug, 实际 %s", cfg.Logger.Level)
	}
}

// 场景4：无后缀文件强制格式
func TestScenario4_ForceFormat(t *testing.T) {
	cm := NewConfigManager(&TestConfig{}, WithForceFormat(&JSONSerializer{}))
	if err := cm.LoadConfig(writeFile(t, "myconfig", testJSON)); err != nil {
		t.Fatalf("加载无后缀配置失败: %v", err)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Output != "stdout" {
		t.Errorf("期望输出 stdout, 实际 %s", cfg.Logger.Output)
	}
}

// 场景5：INI格式
func TestScenario5_INIFormat(t *testing.T) {
	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(writeFile(t, "test.ini", testINI)); err != nil {
		t.Fatalf("加载INI配置失败: %v", err)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Level != "warn" || !cfg.Logger.Rotate {
		t.Errorf("INI解析错误: %+v", cfg.Logger)
	}
}

// 场景6：默认路径查找
func TestScenario6_DefaultPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fsm.json"), []byte(testJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cm := NewConfigManager(&TestConfig{},
		WithAppName("fsm"),
		WithDefaultPaths(filepath.Join(dir, "missing", "{{.AppName}}"), filepath.Join(dir, "{{.AppName}}")),
	)
	if err := cm.LoadConfig(""); err != nil {
		t.Fatalf("默认路径加载失败: %v", err)
	}
	if cm.ConfigPath() != filepath.Join(dir, "fsm.json") {
		t.Errorf("配置路径错误: %s", cm.ConfigPath())
	}
}

// 场景7：找不到配置
func TestScenario7_NotFound(t *testing.T) {
	cm := NewConfigManager(&TestConfig{}, WithDefaultPaths(filepath.Join(t.TempDir(), "{{.AppName}}")))
	if err := cm.LoadConfig(""); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("期望 ErrConfigNotFound, got %v", err)
	}
	if _, err := cm.GetConfig(); err == nil {
		t.Error("加载失败后 GetConfig 应返回错误")
	}
}

// 场景8：保存配置修改
func TestScenario8_SaveConfig(t *testing.T) {
	path := writeFile(t, "save.yml", testYAML)
	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载失败: %v", err)
	}

	cfg, _ := cm.GetConfig()
	cfg.Logger.Level = "error"
	if err := cm.SaveConfig(); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "level: error") {
		t.Errorf("保存内容错误:\n%s", data)
	}
}

// 场景9：手动重载与变更回调
func TestScenario9_ReloadAndOnChange(t *testing.T) {
	path := writeFile(t, "reload.yml", testYAML)
	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载失败: %v", err)
	}

	var oldLevel, newLevel string
	cm.OnChange(func(old, new *TestConfig) {
		oldLevel, newLevel = old.Logger.Level, new.Logger.Level
	})

	updated := strings.Replace(testYAML, "level: info", "level: debug", 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}
	if err := cm.ReloadConfig(); err != nil {
		t.Fatalf("重载失败: %v", err)
	}

	if oldLevel != "info" || newLevel != "debug" {
		t.Errorf("回调参数错误: old=%s new=%s", oldLevel, newLevel)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Level != "debug" {
		t.Errorf("重载后级别错误: %s", cfg.Logger.Level)
	}
}

// 场景10：环境变量注入
func TestScenario10_EnvOverride(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "error")
	t.Setenv("TEST_LOG_ROTATE", "true")
	t.Setenv("TEST_DIAGRAM_TIMEOUT", "3s")

	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(writeFile(t, "env.yml", testYAML)); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Level != "error" || !cfg.Logger.Rotate || cfg.Diagram.Timeout != 3*time.Second {
		t.Errorf("环境变量未生效: %+v", cfg)
	}
}

func TestScenario11_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("TEST_DIAGRAM_INITIAL", "maybe")

	cm := NewConfigManager(&TestConfig{})
	if err := cm.LoadConfig(writeFile(t, "env.yml", testYAML)); err == nil {
		t.Error("非法布尔值应返回错误")
	}
}

// 场景12：文件监听自动重载
func TestScenario12_Watch(t *testing.T) {
	path := writeFile(t, "watch.yml", testYAML)
	cm := NewConfigManager(&TestConfig{},
		WithConfigWatch(true, 20*time.Millisecond),
		WithLogger(logger.Nop()),
	)
	defer cm.Close()

	var reloaded atomic.Int32
	cm.OnChange(func(old, new *TestConfig) { reloaded.Add(1) })

	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载失败: %v", err)
	}

	updated := strings.Replace(testYAML, "level: info", "level: warn", 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloaded.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reloaded.Load() == 0 {
		t.Fatal("文件变化后未自动重载")
	}
	cfg, _ := cm.GetConfig()
	if cfg.Logger.Level != "warn" {
		t.Errorf("重载后级别错误: %s", cfg.Logger.Level)
	}
}

// 场景13：动态关闭监听与重复关闭
func TestScenario13_DynamicWatch(t *testing.T) {
	cm := NewConfigManager(&TestConfig{}, WithLogger(logger.Nop()))
	if err := cm.LoadConfig(writeFile(t, "dyn.yml", testYAML)); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if err := cm.EnableWatch(true); err != nil {
		t.Fatalf("启用监听失败: %v", err)
	}
	if err := cm.EnableWatch(false); err != nil {
		t.Fatalf("关闭监听失败: %v", err)
	}
	cm.Close()
	cm.Close()
}

func TestReplacePathVars(t *testing.T) {
	got := replacePathVars("{{.ExecDir}}/{{.AppName}}", map[string]string{"AppName": "fsm", "ExecDir": "/opt"})
	if got != "/opt/fsm" {
		t.Errorf("替换错误: %s", got)
	}
}

func TestValidateConfigPath(t *testing.T) {
	if err := validateConfigPath(""); err == nil {
		t.Error("空路径应报错")
	}
	if err := validateConfigPath(t.TempDir()); err == nil {
		t.Error("目录应报错")
	}
	if err := validateConfigPath(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("不存在的文件应报错")
	}
}

func TestSerializerFor(t *testing.T) {
	tests := map[string]string{
		"a.yml":  "yaml",
		"a.YAML": "yaml",
		"a.json": "json",
		"a.ini":  "ini",
	}
	for path, want := range tests {
		s, ok := SerializerFor(path)
		if !ok || s.GetName() != want {
			t.Errorf("SerializerFor(%s) = %v, want %s", path, s, want)
		}
	}
	if _, ok := SerializerFor("a.toml"); ok {
		t.Error("不支持的后缀应返回 false")
	}
}
