package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransitionNotAllowed 所有被拒绝的转换都匹配该错误
	ErrTransitionNotAllowed = fmt.Errorf("transition not allowed")

	// ErrInvalidStartState 当前状态不在允许的源状态中
	ErrInvalidStartState = fmt.Errorf("invalid start state")

	// ErrConditionsNotMet 守卫条件未全部通过
	ErrConditionsNotMet = fmt.Errorf("conditions not met")

	// ErrConfiguration 声明转换时参数非法
	ErrConfiguration = fmt.Errorf("invalid transition configuration")

	// ErrDuplicateTransition 当转换已注册时返回
	ErrDuplicateTransition = fmt.Errorf("duplicate transition")

	// ErrTransitionNotFound 当注册表中不存在该转换时返回
	ErrTransitionNotFound = fmt.Errorf("transition not found")

	// ErrIncompleteTransition 调用未得到结果，如操作 panic
	ErrIncompleteTransition = fmt.Errorf("transition did not complete")
)

// ConfigurationError 声明期校验失败
type ConfigurationError struct {
	Operation string
	Field     string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Operation, e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidStartStateError 调用时当前状态不被允许
type InvalidStartStateError struct {
	Current   Value
	Operation string
	Allowed   []Value
}

func (e *InvalidStartStateError) Error() string {
	return fmt.Sprintf("current state is %s, %s allows transitions from %s",
		e.Current, e.Operation, formatValues(e.Allowed))
}

func (e *InvalidStartStateError) Is(target error) bool {
	return target == ErrInvalidStartState || target == ErrTransitionNotAllowed
}

// ConditionsNotMetError 列出所有未通过的守卫条件
type ConditionsNotMetError struct {
	Operation  string
	Conditions []string
}

func (e *ConditionsNotMetError) Error() string {
	return fmt.Sprintf("%s: following conditions did not return true: %s",
		e.Operation, strings.Join(e.Conditions, ", "))
}

func (e *ConditionsNotMetError) Is(target error) bool {
	return target == ErrConditionsNotMet || target == ErrTransitionNotAllowed
}

// IsRejected 判断错误是否为转换被拒绝
func IsRejected(err error) bool {
	return errors.Is(err, ErrTransitionNotAllowed)
}

func formatValues(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func configErr(op, field, format string, args ...any) error {
	return &ConfigurationError{Operation: op, Field: field, Reason: fmt.Sprintf(format, args...)}
}
