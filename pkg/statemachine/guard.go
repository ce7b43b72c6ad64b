package statemachine

import (
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// NoArgs 用于无参数的操作
type NoArgs = struct{}

// Invoker 阻塞执行路径的能力接口
type Invoker[T Stateful, A, R any] interface {
	Descriptor() *Descriptor
	Invoke(obj T, args A) Result[R]
}

// core 两种执行路径共享的检查与提交逻辑
type core[T Stateful, A, R any] struct {
	desc      *Descriptor
	log       logger.Logger
	observers []Observer
}

func newCore[T Stateful, A, R any](d *Descriptor, o *options) (core[T, A, R], error) {
	if o.registry != nil {
		if err := o.registry.Register(d); err != nil {
			return core[T, A, R]{}, err
		}
	}
	return core[T, A, R]{desc: d, log: o.log, observers: o.observers}, nil
}

// Descriptor 返回转换描述
func (c *core[T, A, R]) Descriptor() *Descriptor { return c.desc }

// admit 检查对象状态是否为允许的源状态
func (c *core[T, A, R]) admit(obj T) (Value, error) {
	from := obj.State()
	if !from.IsValid() {
		return from, &ConfigurationError{Operation: c.desc.name, Field: "state", Reason: "state field required"}
	}
	if !c.desc.Allows(from) {
		return from, &InvalidStartStateError{
			Current:   from,
			Operation: c.desc.name,
			Allowed:   c.desc.Sources(),
		}
	}
	return from, nil
}

// conditionsFailed 构造条件未通过错误，failed 为空时返回 nil
func (c *core[T, A, R]) conditionsFailed(failed []string) error {
	if len(failed) == 0 {
		return nil
	}
	return &ConditionsNotMetError{Operation: c.desc.name, Conditions: failed}
}

func (c *core[T, A, R]) reject(from Value, err error, start time.Time) Result[R] {
	c.log.Debug("transition rejected",
		logger.String("operation", c.desc.name),
		logger.Stringer("from", from),
		logger.Err(err),
	)
	return c.finish(Result[R]{Outcome: Rejected, Err: err, From: from, To: from}, start)
}

// settle 根据操作结果提交目标状态或回退到错误状态
func (c *core[T, A, R]) settle(obj T, from Value, val R, err error, start time.Time) Result[R] {
	if err == nil {
		c.write(obj, from, c.desc.target)
		return c.finish(Result[R]{Outcome: Committed, Value: val, From: from, To: c.desc.target}, start)
	}

	if !c.desc.hasOnError {
		return c.finish(Result[R]{Outcome: Failed, Err: err, From: from, To: from}, start)
	}

	c.log.Warn("transition failed, moving to error state",
		logger.String("operation", c.desc.name),
		logger.Stringer("from", from),
		logger.Stringer("to", c.desc.onError),
		logger.Err(err),
	)
	c.write(obj, from, c.desc.onError)
	return c.finish(Result[R]{Outcome: FellBack, Err: err, From: from, To: c.desc.onError}, start)
}

func (c *core[T, A, R]) write(obj T, from, to Value) {
	obj.SetState(to)
	if hook, ok := any(obj).(StateChangeObserver); ok {
		hook.OnStateChange(from, to)
	}
}

func (c *core[T, A, R]) finish(res Result[R], start time.Time) Result[R] {
	if len(c.observers) > 0 {
		ev := Event{
			Operation: c.desc.name,
			Outcome:   res.Outcome,
			From:      res.From,
			To:        res.To,
			Err:       res.Err,
			Duration:  time.Since(start),
		}
		for _, obs := range c.observers {
			obs.Observe(ev)
		}
	}
	return res
}

// Guard 阻塞执行路径的转换守卫
type Guard[T Stateful, A, R any] struct {
	core[T, A, R]
	conditions []Condition[T, A]
	op         func(obj T, args A) (R, error)
}

var _ Invoker[*Machine, NoArgs, any] = (*Guard[*Machine, NoArgs, any])(nil)

// Declare 声明阻塞转换，返回安装好的守卫
func Declare[T Stateful, A, R any](
	name string,
	spec Spec,
	conditions []Condition[T, A],
	op func(obj T, args A) (R, error),
	opts ...Option,
) (*Guard[T, A, R], error) {
	if op == nil {
		return nil, configErr(name, "operation", "operation is nil")
	}
	names, err := validateConditions(name, conditions, false)
	if err != nil {
		return nil, err
	}
	d, err := NewDescriptor(name, spec, names...)
	if err != nil {
		return nil, err
	}
	c, err := newCore[T, A, R](d, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return &Guard[T, A, R]{
		core:       c,
		conditions: append([]Condition[T, A](nil), conditions...),
		op:         op,
	}, nil
}

// MustDeclare 与 Declare 相同，失败时 panic
func MustDeclare[T Stateful, A, R any](
	name string,
	spec Spec,
	conditions []Condition[T, A],
	op func(obj T, args A) (R, error),
	opts ...Option,
) *Guard[T, A, R] {
	g, err := Declare(name, spec, conditions, op, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Invoke 执行一次受守卫的转换
func (g *Guard[T, A, R]) Invoke(obj T, args A) Result[R] {
	start := time.Now()

	from, err := g.admit(obj)
	if err != nil {
		return g.reject(from, err, start)
	}

	// 所有条件都要执行，不短路
	var failed []string
	for _, cond := range g.conditions {
		if !cond.check(obj, args) {
			failed = append(failed, cond.name)
		}
	}
	if err := g.conditionsFailed(failed); err != nil {
		return g.reject(from, err, start)
	}

	val, err := g.op(obj, args)
	return g.settle(obj, from, val, err, start)
}

// Call 执行转换并返回操作结果
func (g *Guard[T, A, R]) Call(obj T, args A) (R, error) {
	return g.Invoke(obj, args).Unwrap()
}
