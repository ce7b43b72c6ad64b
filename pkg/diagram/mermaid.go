// Package diagram 将注册表中的转换渲染为 Mermaid 状态图
package diagram

import (
	"fmt"
	"strings"

	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

const (
	// Header 状态图首行
	Header = "stateDiagram-v2"

	// ErrorEdgeLabel 错误状态边的标签
	ErrorEdgeLabel = "on_error"

	indent = "    "
)

// Option 渲染选项
type Option func(*renderOptions)

type renderOptions struct {
	initial     statemachine.Value
	hasInitial  bool
	skipInitial bool
}

// WithInitial 指定初始状态，覆盖注册表中的初始状态
func WithInitial(v statemachine.Value) Option {
	return func(o *renderOptions) {
		o.initial = v
		o.hasInitial = v.IsValid()
	}
}

// WithoutInitial 不输出初始状态行
func WithoutInitial() Option {
	return func(o *renderOptions) {
		o.skipInitial = true
	}
}

// Mermaid 渲染状态图，每个 (源状态, 目标状态, 名称) 一行
func Mermaid(reg *statemachine.Registry, opts ...Option) string {
	o := &renderOptions{}
	if v, ok := reg.Initial(); ok {
		o.initial, o.hasInitial = v, true
	}
	for _, opt := range opts {
		opt(o)
	}

	var sb strings.Builder
	sb.WriteString(Header + "\n")

	if o.hasInitial && !o.skipInitial {
		sb.WriteString(fmt.Sprintf("%s[*] --> %s\n", indent, o.initial))
	}

	for _, d := range reg.Descriptors() {
		onError, hasOnError := d.OnError()
		for _, src := range d.Sources() {
			writeEdge(&sb, src, d.Target(), d.Name())
			if hasOnError {
				writeEdge(&sb, src, onError, ErrorEdgeLabel)
			}
		}
	}

	return sb.String()
}

func writeEdge(sb *strings.Builder, from, to statemachine.Value, label string) {
	sb.WriteString(fmt.Sprintf("%s%s --> %s : %s\n", indent, from, to, label))
}
