package logger

import "go.uber.org/zap"

type Option = zap.Option

var (
	AddCaller     = zap.AddCaller
	AddCallerSkip = zap.AddCallerSkip
	AddStacktrace = zap.AddStacktrace
	WithCaller    = zap.WithCaller
)
