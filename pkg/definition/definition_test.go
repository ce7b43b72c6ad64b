package definition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/junbin-yang/go-statemachine/pkg/config"
	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

const turnstileYAML = `name: Turnstile
initial: close
transitions:
  - name: insert_coin
    source: [close, open]
    target: open
  - name: pass_thru
    source: open
    target: close
  - name: error_function
    source: close
    target: close
    on_error: error_state
    conditions: [has_power]
`

const flagJSON = `{
  "name": "FeatureFlag",
  "initial": false,
  "transitions": [
    {"name": "activate", "source": false, "target": true},
    {"name": "deactivate", "source": true, "target": false}
  ]
}`

func TestParse_YAML(t *testing.T) {
	reg, err := Parse([]byte(turnstileYAML), &config.YAMLSerializer{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}

	if reg.Name() != "Turnstile" || reg.Len() != 3 {
		t.Fatalf("注册表错误: %s %d", reg.Name(), reg.Len())
	}
	if v, ok := reg.Initial(); !ok || v != statemachine.Text("close") {
		t.Errorf("初始状态错误: %v", v)
	}

	d, err := reg.Lookup("insert_coin")
	if err != nil {
		t.Fatalf("查找失败: %v", err)
	}
	if !d.Allows(statemachine.Text("close")) || !d.Allows(statemachine.Text("open")) {
		t.Errorf("源状态错误: %v", d.Sources())
	}

	d, _ = reg.Lookup("error_function")
	if v, ok := d.OnError(); !ok || v != statemachine.Text("error_state") {
		t.Errorf("错误状态错误: %v", v)
	}
	if c := d.Conditions(); len(c) != 1 || c[0] != "has_power" {
		t.Errorf("条件错误: %v", c)
	}
}

func TestParse_JSONBool(t *testing.T) {
	reg, err := Parse([]byte(flagJSON), &config.JSONSerializer{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	d, _ := reg.Lookup("activate")
	if !d.Allows(statemachine.Bool(false)) || d.Target() != statemachine.Bool(true) {
		t.Errorf("布尔状态错误: %v -> %v", d.Sources(), d.Target())
	}
}

func TestParse_JSONIntegers(t *testing.T) {
	data := `{"name": "Counter", "initial": 0, "transitions": [{"name": "inc", "source": [0, 1], "target": 2}]}`
	reg, err := Parse([]byte(data), &config.JSONSerializer{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	d, _ := reg.Lookup("inc")
	if !d.Allows(statemachine.Int(1)) || d.Target() != statemachine.Int(2) {
		t.Errorf("整数状态错误: %v -> %v", d.Sources(), d.Target())
	}
	if v, _ := reg.Initial(); v != statemachine.Int(0) {
		t.Errorf("初始状态错误: %v", v)
	}
}

func TestParse_JSONLargeIntegers(t *testing.T) {
	data := `{"name": "Ledger", "initial": 3000000000, "transitions": [{"name": "post", "source": 3000000000, "target": 9007199254740992}]}`
	reg, err := Parse([]byte(data), &config.JSONSerializer{})
	if err != nil {
		t.Fatalf("超过 2^31 的整数状态应接受: %v", err)
	}
	d, _ := reg.Lookup("post")
	if !d.Allows(statemachine.Int(3000000000)) || d.Target() != statemachine.Int(9007199254740992) {
		t.Errorf("整数状态错误: %v -> %v", d.Sources(), d.Target())
	}

	if _, err := Parse([]byte(`{"name": "X", "transitions": [{"name": "a", "source": 1e19, "target": 1}]}`),
		&config.JSONSerializer{}); !errors.Is(err, statemachine.ErrConfiguration) {
		t.Errorf("超出 int64 的数值应拒绝: %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"missing name", "transitions: []", ErrMissingName},
		{"list target", "name: X\ntransitions:\n  - {name: a, source: x, target: [y]}", statemachine.ErrConfiguration},
		{"empty source", "name: X\ntransitions:\n  - {name: a, source: [], target: y}", statemachine.ErrConfiguration},
		{"float source", "name: X\ntransitions:\n  - {name: a, source: 1.5, target: y}", statemachine.ErrConfiguration},
		{"missing target", "name: X\ntransitions:\n  - {name: a, source: x}", statemachine.ErrConfiguration},
		{"duplicate", "name: X\ntransitions:\n  - {name: a, source: x, target: y}\n  - {name: a, source: y, target: x}", statemachine.ErrDuplicateTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), &config.YAMLSerializer{})
			if !errors.Is(err, tt.want) {
				t.Errorf("期望 %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_INIRejected(t *testing.T) {
	if _, err := Parse([]byte("name = X"), &config.INISerializer{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("INI 应不支持: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "turnstile.yaml")
	if err := os.WriteFile(path, []byte(turnstileYAML), 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if reg.Len() != 3 {
		t.Errorf("转换数量错误: %d", reg.Len())
	}

	if _, err := LoadFile(filepath.Join(dir, "turnstile.toml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("未知后缀应报错: %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("文件不存在应报错")
	}
}
