package statemachine

import "time"

// Outcome 一次转换调用的结果类型
type Outcome uint8

const (
	// Rejected 源状态或守卫条件不满足，操作未执行
	Rejected Outcome = iota + 1
	// Committed 操作成功，状态写入目标状态
	Committed
	// FellBack 操作失败，状态写入错误状态，错误被吞掉
	FellBack
	// Failed 操作失败且未设置错误状态，状态不变
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Committed:
		return "committed"
	case FellBack:
		return "fell_back"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result 一次转换调用的完整结果
type Result[R any] struct {
	Outcome Outcome
	Value   R     // 操作返回值，仅 Committed 时有意义
	Err     error // 拒绝原因或操作返回的错误
	From    Value // 调用前的状态
	To      Value // 调用后的状态
}

// Unwrap 转换为普通的 (值, 错误) 返回形式
// FellBack 时错误已被错误状态吸收，返回零值和 nil
func (r Result[R]) Unwrap() (R, error) {
	var zero R
	switch r.Outcome {
	case Committed:
		return r.Value, nil
	case FellBack:
		return zero, nil
	case Rejected, Failed:
		return zero, r.Err
	default:
		// 未完成的调用不能当作成功
		if r.Err != nil {
			return zero, r.Err
		}
		return zero, ErrIncompleteTransition
	}
}

// Event 提供给 Observer 的转换事件
type Event struct {
	Operation string
	Outcome   Outcome
	From      Value
	To        Value
	Err       error
	Duration  time.Duration
}

// Observer 接收每次转换调用的结果
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc 函数形式的 Observer
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }
