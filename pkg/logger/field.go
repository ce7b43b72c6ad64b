package logger

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Field = zap.Field

func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Stringer(key string, val fmt.Stringer) Field  { return zap.Stringer(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }

// Err 错误字段，键固定为 error
func Err(err error) Field { return zap.Error(err) }

// GetError 保留旧名称
func GetError(e error) Field { return zap.Error(e) }
