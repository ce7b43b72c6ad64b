package statemachine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/junbin-yang/go-statemachine/pkg/logger"
)

// AsyncInvoker 挂起执行路径的能力接口
type AsyncInvoker[T Stateful, A, R any] interface {
	Descriptor() *Descriptor
	Invoke(obj T, args A) *Pending[R]
}

// Pending 尚未执行的转换调用，由调用方 Await 驱动
// 不 Await 则不会执行任何检查、操作或状态写入
type Pending[R any] struct {
	once sync.Once
	run  func(ctx context.Context) Result[R]
	res  Result[R]
}

// Await 在当前协程中执行转换并等待完成，重复调用返回同一结果
// 操作 panic 时记录为 Failed 后继续向上 panic
func (p *Pending[R]) Await(ctx context.Context) Result[R] {
	p.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				p.res = Result[R]{Outcome: Failed, Err: fmt.Errorf("%w: panic: %v", ErrIncompleteTransition, r)}
				p.run = nil
				panic(r)
			}
		}()
		p.res = p.run(ctx)
		p.run = nil
	})
	return p.res
}

// AsyncGuard 挂起执行路径的转换守卫
type AsyncGuard[T Stateful, A, R any] struct {
	core[T, A, R]
	conditions []Condition[T, A]
	op         func(ctx context.Context, obj T, args A) (R, error)
}

var _ AsyncInvoker[*Machine, NoArgs, any] = (*AsyncGuard[*Machine, NoArgs, any])(nil)

// DeclareAsync 声明挂起转换，条件可以是同步或挂起形式
func DeclareAsync[T Stateful, A, R any](
	name string,
	spec Spec,
	conditions []Condition[T, A],
	op func(ctx context.Context, obj T, args A) (R, error),
	opts ...Option,
) (*AsyncGuard[T, A, R], error) {
	if op == nil {
		return nil, configErr(name, "operation", "operation is nil")
	}
	names, err := validateConditions(name, conditions, true)
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
	return &AsyncGuard[T, A, R]{
		core:       c,
		conditions: append([]Condition[T, A](nil), conditions...),
		op:         op,
	}, nil
}

// MustDeclareAsync 与 DeclareAsync 相同，失败时 panic
func MustDeclareAsync[T Stateful, A, R any](
	name string,
	spec Spec,
	conditions []Condition[T, A],
	op func(ctx context.Context, obj T, args A) (R, error),
	opts ...Option,
) *AsyncGuard[T, A, R] {
	g, err := DeclareAsync(name, spec, conditions, op, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Invoke 立即返回待执行的调用
func (g *AsyncGuard[T, A, R]) Invoke(obj T, args A) *Pending[R] {
	return &Pending[R]{
		run: func(ctx context.Context) Result[R] {
			return g.run(ctx, obj, args)
		},
	}
}

// Call 执行转换并等待完成
func (g *AsyncGuard[T, A, R]) Call(ctx context.Context, obj T, args A) (R, error) {
	return g.Invoke(obj, args).Await(ctx).Unwrap()
}

func (g *AsyncGuard[T, A, R]) run(ctx context.Context, obj T, args A) Result[R] {
	start := time.Now()

	from, err := g.admit(obj)
	if err != nil {
		return g.reject(from, err, start)
	}

	// 所有条件都要执行，不短路；挂起条件在此处等待完成
	var failed []string
	for _, cond := range g.conditions {
		var ok bool
		if cond.Suspending() {
			ok, err = cond.await(ctx, obj, args)
			if err != nil {
				g.log.Debug("condition aborted transition",
					logger.String("operation", g.desc.name),
					logger.String("condition", cond.name),
					logger.Err(err),
				)
				return g.finish(Result[R]{Outcome: Failed, Err: err, From: from, To: from}, start)
			}
		} else {
			ok = cond.check(obj, args)
		}
		if !ok {
			failed = append(failed, cond.name)
		}
	}
	if err := g.conditionsFailed(failed); err != nil {
		return g.reject(from, err, start)
	}

	val, err := g.op(ctx, obj, args)
	return g.settle(obj, from, val, err, start)
}
