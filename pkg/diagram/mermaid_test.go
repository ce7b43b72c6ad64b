package diagram

import (
	"strings"
	"testing"

	"github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

func turnstileRegistry(t *testing.T) *statemachine.Registry {
	t.Helper()
	reg := statemachine.NewRegistryWithInitial("Turnstile", statemachine.Text("close"))

	specs := []struct {
		name string
		spec statemachine.Spec
	}{
		{"insert_coin", statemachine.Spec{Source: []string{"close", "open"}, Target: "open"}},
		{"pass_thru", statemachine.Spec{Source: "open", Target: "close", OnError: "failed"}},
	}
	for _, s := range specs {
		d, err := statemachine.NewDescriptor(s.name, s.spec)
		if err != nil {
			t.Fatalf("创建描述失败: %v", err)
		}
		if err := reg.Register(d); err != nil {
			t.Fatalf("注册失败: %v", err)
		}
	}
	return reg
}

func TestMermaid_WithoutInitial(t *testing.T) {
	out := Mermaid(turnstileRegistry(t), WithoutInitial())

	for _, want := range []string{
		"stateDiagram-v2",
		"close --> open : insert_coin",
		"open --> open : insert_coin",
		"open --> close : pass_thru",
		"open --> failed : on_error",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("缺少 %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[*]") {
		t.Errorf("不应输出初始状态:\n%s", out)
	}
}

func TestMermaid_WithInitial(t *testing.T) {
	want := strings.Join([]string{
		"stateDiagram-v2",
		"    [*] --> close",
		"    close --> open : insert_coin",
		"    open --> open : insert_coin",
		"    open --> close : pass_thru",
		"    open --> failed : on_error",
		"",
	}, "\n")

	if got := Mermaid(turnstileRegistry(t)); got != want {
		t.Errorf("输出不符:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMermaid_OverrideInitial(t *testing.T) {
	out := Mermaid(turnstileRegistry(t), WithInitial(statemachine.Text("open")))
	if !strings.Contains(out, "[*] --> open\n") {
		t.Errorf("初始状态应被覆盖:\n%s", out)
	}
}

func TestMermaid_BoolStates(t *testing.T) {
	reg := statemachine.NewRegistry("FeatureFlag")
	d, _ := statemachine.NewDescriptor("enable_feature", statemachine.Spec{Source: false, Target: true})
	_ = reg.Register(d)

	out := Mermaid(reg)
	if out != "stateDiagram-v2\n    false --> true : enable_feature\n" {
		t.Errorf("输出不符: %q", out)
	}
}
