package statemachine

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind 状态值的类型标签
type Kind uint8

const (
	KindInvalid Kind = iota
	KindText
	KindBool
	KindInt
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// Value 表示状态机中的状态
// 可比较，可直接作为map键使用；零值无效
type Value struct {
	kind Kind
	text string // 文本或枚举标签
	num  int64  // 整数或布尔值
	enum string // 枚举的类型名
}

// Text 创建文本状态
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Bool 创建布尔状态
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Int 创建整数状态
func Int(i int64) Value {
	return Value{kind: KindInt, num: i}
}

// Enum 创建枚举状态，相同类型且标签相同的枚举值相等
func Enum(e fmt.Stringer) Value {
	return Value{kind: KindEnum, text: e.String(), enum: fmt.Sprintf("%T", e)}
}

// Kind 返回状态值的类型标签
func (v Value) Kind() Kind { return v.kind }

// IsValid 判断状态值是否有效
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// String 返回用于错误信息和状态图的标签
func (v Value) String() string {
	switch v.kind {
	case KindText, KindEnum:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.num == 1)
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	default:
		return "<invalid>"
	}
}

// ValueOf 将松散类型的输入转换为状态值
// 支持 Value、string、bool、所有整数类型以及底层为整数或字符串的 fmt.Stringer 枚举
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, fmt.Errorf("state value is nil")
	case Value:
		if !t.IsValid() {
			return Value{}, fmt.Errorf("invalid state value")
		}
		return t, nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	}

	rv := reflect.ValueOf(x)
	if e, ok := x.(fmt.Stringer); ok {
		// 指针、结构体等 Stringer 不是枚举，也不在此调用 String()
		if !isEnumKind(rv.Kind()) || rv.Type() == durationType {
			return Value{}, fmt.Errorf("unsupported state type %T", x)
		}
		return Enum(e), nil
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("state value %d overflows int64", u)
		}
		return Int(int64(u)), nil
	case reflect.String:
		return Text(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	}
	return Value{}, fmt.Errorf("unsupported state type %T", x)
}

var durationType = reflect.TypeOf(time.Duration(0))

func isEnumKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return true
	}
	return false
}

// valuesOf 将单个状态值或状态值切片规范化为有序、去重的集合
func valuesOf(x any) ([]Value, error) {
	if x == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if _, isValue := x.(Value); !isValue {
		if _, isStringer := x.(fmt.Stringer); !isStringer && reflect.ValueOf(x).Kind() == reflect.Slice {
			rv := reflect.ValueOf(x)
			if rv.Len() == 0 {
				return nil, fmt.Errorf("source list is empty")
			}
			out := make([]Value, 0, rv.Len())
			seen := make(map[Value]struct{}, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				v, err := ValueOf(rv.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf("source[%d]: %w", i, err)
				}
				if _, dup := seen[v]; dup {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, v)
			}
			return out, nil
		}
	}

	v, err := ValueOf(x)
	if err != nil {
		return nil, err
	}
	return []Value{v}, nil
}

// Stateful 定义被守卫对象必须暴露的状态字段
type Stateful interface {
	// State 返回当前状态
	State() Value

	// SetState 写入新状态
	SetState(v Value)
}

// StateChangeObserver 可选接口，对象实现后会在每次状态写入后收到通知
type StateChangeObserver interface {
	OnStateChange(from, to Value)
}

// Machine 可嵌入的状态字段实现
type Machine struct {
	state Value
}

// NewMachine 创建带初始状态的 Machine
func NewMachine(initial Value) Machine {
	return Machine{state: initial}
}

// State 返回当前状态
func (m *Machine) State() Value { return m.state }

// SetState 写入新状态
func (m *Machine) SetState(v Value) { m.state = v }

// RequireState 检查对象已设置有效状态
func RequireState(obj Stateful) error {
	if obj == nil || !obj.State().IsValid() {
		return &ConfigurationError{Field: "state", Reason: "state field required"}
	}
	return nil
}
