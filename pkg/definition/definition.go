// Package definition 从 YAML/JSON 文件加载状态机转换定义
//
// 文件格式:
//
//	name: Turnstile
//	initial: close
//	transitions:
//	  - name: insert_coin
//	    source: [close, open]
//	    target: open
//	    on_error: error_state
package definition

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/junbin-yang/go-statemachine/pkg/config"
	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported definition format")
	ErrMissingName       = errors.New("definition name is required")
)

// Definition 状态机定义
type Definition struct {
	Name        string       `yaml:"name" json:"name"`
	Initial     any          `yaml:"initial,omitempty" json:"initial,omitempty"`
	Transitions []Transition `yaml:"transitions" json:"transitions"`
}

// Transition 单个转换定义，source 可以是单值或列表
type Transition struct {
	Name       string   `yaml:"name" json:"name"`
	Source     any      `yaml:"source" json:"source"`
	Target     any      `yaml:"target" json:"target"`
	OnError    any      `yaml:"on_error,omitempty" json:"on_error,omitempty"`
	Conditions []string `yaml:"conditions,omitempty" json:"conditions,omitempty"`
}

// Formats 定义文件支持的格式，INI 无法表达列表
func Formats() []config.Serializer {
	return []config.Serializer{&config.YAMLSerializer{}, &config.JSONSerializer{}}
}

// LoadFile 按后缀选择格式读取定义文件
func LoadFile(path string) (*statemachine.Registry, error) {
	s, ok := config.SerializerFor(path, Formats()...)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition failed: %w", err)
	}

	reg, err := Parse(data, s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse 解析定义内容并构建注册表
func Parse(data []byte, s config.Serializer) (*statemachine.Registry, error) {
	if s == nil || s.GetName() == "ini" {
		return nil, ErrUnsupportedFormat
	}

	var def Definition
	if err := s.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshal definition failed (%s): %w", s.GetName(), err)
	}
	return def.Registry()
}

// Registry 校验定义并构建注册表
func (d *Definition) Registry() (*statemachine.Registry, error) {
	if d.Name == "" {
		return nil, ErrMissingName
	}

	reg := statemachine.NewRegistry(d.Name)
	if d.Initial != nil {
		initial, err := statemachine.ValueOf(normalize(d.Initial))
		if err != nil {
			return nil, fmt.Errorf("initial: %w", err)
		}
		reg = statemachine.NewRegistryWithInitial(d.Name, initial)
	}

	for i, t := range d.Transitions {
		desc, err := statemachine.NewDescriptor(t.Name, statemachine.Spec{
			Source:  normalize(t.Source),
			Target:  normalize(t.Target),
			OnError: normalize(t.OnError),
		}, t.Conditions...)
		if err != nil {
			return nil, fmt.Errorf("transitions[%d]: %w", i, err)
		}
		if err := reg.Register(desc); err != nil {
			return nil, fmt.Errorf("transitions[%d] %s: %w", i, t.Name, err)
		}
	}
	return reg, nil
}

// normalize 将 JSON 解码出的整数值 float64 还原为 int64
func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		// float64(math.MaxInt64) 等于 2^63，已超出 int64
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x)
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
