package statemachine

import "context"

// Spec 声明一个转换所需的状态参数
// Source 可以是单个状态值或状态值切片，OnError 为 nil 表示不设置错误状态
type Spec struct {
	Source  any
	Target  any
	OnError any
}

// Descriptor 描述一个已声明的转换，构造后不可变
type Descriptor struct {
	name       string
	sources    []Value
	sourceSet  map[Value]struct{}
	target     Value
	onError    Value
	hasOnError bool
	conditions []string
}

// NewDescriptor 校验参数并创建转换描述
func NewDescriptor(name string, spec Spec, conditions ...string) (*Descriptor, error) {
	if name == "" {
		return nil, configErr(name, "name", "operation name is empty")
	}

	sources, err := valuesOf(spec.Source)
	if err != nil {
		return nil, configErr(name, "source", "source can be a string, bool, int, enum or a list of them: %v", err)
	}

	target, err := ValueOf(spec.Target)
	if err != nil {
		return nil, configErr(name, "target", "target needs to be a string, bool, int or enum: %v", err)
	}

	d := &Descriptor{
		name:       name,
		sources:    sources,
		sourceSet:  make(map[Value]struct{}, len(sources)),
		target:     target,
		conditions: append([]string(nil), conditions...),
	}
	for _, s := range sources {
		d.sourceSet[s] = struct{}{}
	}

	if spec.OnError != nil {
		onError, err := ValueOf(spec.OnError)
		if err != nil {
			return nil, configErr(name, "on_error", "on_error needs to be a string, bool, int or enum: %v", err)
		}
		d.onError = onError
		d.hasOnError = true
	}

	return d, nil
}

// Name 返回转换名称
func (d *Descriptor) Name() string { return d.name }

// Sources 返回源状态，保持声明顺序
func (d *Descriptor) Sources() []Value {
	return append([]Value(nil), d.sources...)
}

// Allows 判断状态是否为允许的源状态
func (d *Descriptor) Allows(v Value) bool {
	_, ok := d.sourceSet[v]
	return ok
}

// Target 返回目标状态
func (d *Descriptor) Target() Value { return d.target }

// OnError 返回错误状态
func (d *Descriptor) OnError() (Value, bool) { return d.onError, d.hasOnError }

// Conditions 返回守卫条件名称
func (d *Descriptor) Conditions() []string {
	return append([]string(nil), d.conditions...)
}

// Condition 守卫条件，同步或挂起两种形式之一
type Condition[T, A any] struct {
	name  string
	check func(obj T, args A) bool
	await func(ctx context.Context, obj T, args A) (bool, error)
}

// Check 创建同步守卫条件
func Check[T, A any](name string, fn func(obj T, args A) bool) Condition[T, A] {
	return Condition[T, A]{name: name, check: fn}
}

// CheckAsync 创建挂起守卫条件，仅可用于 AsyncGuard
func CheckAsync[T, A any](name string, fn func(ctx context.Context, obj T, args A) (bool, error)) Condition[T, A] {
	return Condition[T, A]{name: name, await: fn}
}

// Name 返回条件名称
func (c Condition[T, A]) Name() string { return c.name }

// Suspending 判断条件是否需要等待
func (c Condition[T, A]) Suspending() bool { return c.await != nil }

func (c Condition[T, A]) callable() bool { return c.check != nil || c.await != nil }

// validateConditions 校验条件列表并返回条件名称
func validateConditions[T, A any](op string, conds []Condition[T, A], allowSuspending bool) ([]string, error) {
	names := make([]string, 0, len(conds))
	for i, c := range conds {
		if !c.callable() {
			return nil, configErr(op, "conditions", "conditions list must contain functions (index %d)", i)
		}
		if c.name == "" {
			return nil, configErr(op, "conditions", "condition at index %d has no name", i)
		}
		if c.Suspending() && !allowSuspending {
			return nil, configErr(op, "conditions", "condition %s is suspending, use DeclareAsync", c.name)
		}
		names = append(names, c.name)
	}
	return names, nil
}
