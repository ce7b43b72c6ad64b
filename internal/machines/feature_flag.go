package machines

import (
	sm "github.com/junbin-yang/go-statemachine/pkg/statemachine"
)

// Account 功能开关所属账户
type Account struct {
	FeatureEnabled   bool
	BillsOutstanding []string
}

// FeatureFlagRegistry 功能开关的转换注册表，状态为布尔值
var FeatureFlagRegistry = sm.NewRegistry("FeatureFlag")

var (
	enableFeature = sm.MustDeclare("enable_feature", sm.Spec{Source: false, Target: true},
		[]sm.Condition[*FeatureFlag, sm.NoArgs]{
			sm.Check("account_in_good_standing", func(f *FeatureFlag, _ sm.NoArgs) bool {
				return len(f.Account.BillsOutstanding) == 0
			}),
		},
		func(f *FeatureFlag, _ sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(FeatureFlagRegistry))

	disableFeature = sm.MustDeclare("disable_feature", sm.Spec{Source: true, Target: false}, nil,
		func(f *FeatureFlag, _ sm.NoArgs) (sm.NoArgs, error) { return sm.NoArgs{}, nil },
		sm.WithRegistry(FeatureFlagRegistry))
)

// FeatureFlag 账户功能开关，状态与 Account.FeatureEnabled 同步
type FeatureFlag struct {
	Account *Account
}

func NewFeatureFlag(account *Account) *FeatureFlag {
	return &FeatureFlag{Account: account}
}

func (f *FeatureFlag) State() sm.Value { return sm.Bool(f.Account.FeatureEnabled) }

func (f *FeatureFlag) SetState(v sm.Value) { f.Account.FeatureEnabled = v == sm.Bool(true) }

func (f *FeatureFlag) EnableFeature() error {
	_, err := enableFeature.Call(f, sm.NoArgs{})
	return err
}

func (f *FeatureFlag) DisableFeature() error {
	_, err := disableFeature.Call(f, sm.NoArgs{})
	return err
}
