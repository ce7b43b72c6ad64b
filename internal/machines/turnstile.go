// Package machines 内置示例状态机，供 fsmdiagram 按名称渲染
package machines

import (
	sm "github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// TurnstileRegistry 闸机的转换注册表
var TurnstileRegistry = sm.NewRegistryWithInitial("Turnstile", sm.Text("close"))

var (
	turnstileInsertCoin = sm.MustDeclare("insert_coin",
		sm.Spec{Source: []string{"close", "open"}, Target: "open"}, nil,
		func(sm.Stateful, sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(TurnstileRegistry))

	turnstilePassThru = sm.MustDeclare("pass_thru",
		sm.Spec{Source: "open", Target: "close"}, nil,
		func(sm.Stateful, sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(TurnstileRegistry))
)

// Turnstile 投币闸机
type Turnstile struct {
	sm.Machine
}

func NewTurnstile() *Turnstile {
	initial, _ := TurnstileRegistry.Initial()
	return &Turnstile{Machine: sm.NewMachine(initial)}
}

func (t *Turnstile) InsertCoin() error {
	_, err := turnstileInsertCoin.Call(t, sm.NoArgs{})
	return err
}

func (t *Turnstile) PassThru() error {
	_, err := turnstilePassThru.Call(t, sm.NoArgs{})
	return err
}

// TurnstileWithLog 记录状态历史的闸机，自转换不记录
type TurnstileWithLog struct {
	Turnstile
	History []sm.Value
}

func NewTurnstileWithLog() *TurnstileWithLog {
	t := &TurnstileWithLog{Turnstile: *NewTurnstile()}
	t.History = []sm.Value{t.State()}
	return t
}

func (t *TurnstileWithLog) OnStateChange(from, to sm.Value) {
	if from != to {
		t.History = append(t.History, to)
	}
}

// InsertCoin 以自身调用守卫，使状态变更回调生效
func (t *TurnstileWithLog) InsertCoin() error {
	_, err := turnstileInsertCoin.Call(t, sm.NoArgs{})
	return err
}

func (t *TurnstileWithLog) PassThru() error {
	_, err := turnstilePassThru.Call(t, sm.NoArgs{})
	return err
}
