package machines

import (
	"context"
	"errors"

	sm "github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// ErrJammed 闸机卡住
var ErrJammed = errors.New("turnstile jammed")

// AsyncTurnstileRegistry 异步闸机的转换注册表
var AsyncTurnstileRegistry = sm.NewRegistryWithInitial("AsyncTurnstile", sm.Text("close"))

var (
	asyncInsertCoin = sm.MustDeclareAsync("insert_coin",
		sm.Spec{Source: []string{"close", "open"}, Target: "open", OnError: "error_state"}, nil,
		func(context.Context, *AsyncTurnstile, sm.NoArgs) (string, error) { return "inserted coin", nil },
		sm.WithRegistry(AsyncTurnstileRegistry))

	asyncPassThru = sm.MustDeclareAsync("pass_thru",
		sm.Spec{Source: "open", Target: "close"}, nil,
		func(context.Context, *AsyncTurnstile, sm.NoArgs) (string, error) { return "passed thru", nil },
		sm.WithRegistry(AsyncTurnstileRegistry))

	asyncErrorFunction = sm.MustDeclareAsync("error_function",
		sm.Spec{Source: "close", Target: "close", OnError: "error_state"}, nil,
		func(context.Context, *AsyncTurnstile, sm.NoArgs) (string, error) { return "", ErrJammed },
		sm.WithRegistry(AsyncTurnstileRegistry))
)

// AsyncTurnstile 挂起执行路径的闸机
type AsyncTurnstile struct {
	sm.Machine
}

func NewAsyncTurnstile() *AsyncTurnstile {
	initial, _ := AsyncTurnstileRegistry.Initial()
	return &AsyncTurnstile{Machine: sm.NewMachine(initial)}
}

func (t *AsyncTurnstile) InsertCoin(ctx context.Context) (string, error) {
	return asyncInsertCoin.Call(ctx, t, sm.NoArgs{})
}

func (t *AsyncTurnstile) PassThru(ctx context.Context) (string, error) {
	return asyncPassThru.Call(ctx, t, sm.NoArgs{})
}

// ErrorFunction 总是失败，状态回退到 error_state
func (t *AsyncTurnstile) ErrorFunction(ctx context.Context) (string, error) {
	return asyncErrorFunction.Call(ctx, t, sm.NoArgs{})
}
