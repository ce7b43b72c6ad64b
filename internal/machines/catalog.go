package machines

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	sm "github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

var ErrMachineNotFound = errors.New("machine not found")

var catalog = map[string]*sm.Registry{}

func init() {
	for _, r := range []*sm.Registry{
		TurnstileRegistry,
		AsyncTurnstileRegistry,
		GitHubPullRequestRegistry,
		AsyncGitHubPullRequestRegistry,
		FeatureFlagRegistry,
	} {
		catalog[r.Name()] = r
	}
}

// Lookup 按名称查找内置状态机，名称不区分大小写
func Lookup(name string) (*sm.Registry, error) {
	if r, ok := catalog[name]; ok {
		return r, nil
	}
	for n, r := range catalog {
		if strings.EqualFold(n, name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMachineNotFound, name)
}

// Names 返回全部内置状态机名称，按字母排序
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
